package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arnold/runcast-api/internal/models"
	"gorm.io/gorm"
)

var ErrDuplicateKey = errors.New("idempotency key already exists")

// QueueStore owns the lifecycle of queued notification entries.
type QueueStore struct {
	db *gorm.DB
}

func NewQueueStore(db *gorm.DB) *QueueStore {
	return &QueueStore{db: db}
}

// Insert persists a new entry. A collision on the idempotency key returns
// ErrDuplicateKey; the unique index is the final line of defense even when
// callers go through the resolver.
func (s *QueueStore) Insert(entry *models.NotificationEntry) error {
	if err := s.db.Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert notification entry: %w", err)
	}
	return nil
}

// DueForDispatch returns pending entries whose scheduled time has passed and
// whose retry count is below maxRetries, oldest scheduled first, capped at
// limit. Oldest-first keeps worst-case staleness bounded.
func (s *QueueStore) DueForDispatch(now time.Time, maxRetries, limit int) ([]models.NotificationEntry, error) {
	var entries []models.NotificationEntry
	err := s.db.
		Where("status = ? AND scheduled_for <= ? AND retry_count < ?", models.StatusPending, now, maxRetries).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due notifications: %w", err)
	}
	return entries, nil
}

// Save writes back the mutable delivery fields of an existing entry.
func (s *QueueStore) Save(entry *models.NotificationEntry) error {
	if err := s.db.Save(entry).Error; err != nil {
		return fmt.Errorf("failed to save notification entry: %w", err)
	}
	return nil
}

// DeleteOlderThan removes entries in the given terminal statuses created
// before cutoff and returns how many rows were removed.
func (s *QueueStore) DeleteOlderThan(cutoff time.Time, statuses []models.NotificationStatus) (int64, error) {
	result := s.db.
		Where("status IN ? AND created_at < ?", statuses, cutoff).
		Delete(&models.NotificationEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old notification entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
