package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/arnold/runcast-api/internal/models"
	"gorm.io/gorm"
)

// EventKind is the lifecycle event tag sent by the (already verified)
// webhook layer.
type EventKind string

const (
	EventFrameAdded            EventKind = "frame_added"
	EventFrameRemoved          EventKind = "frame_removed"
	EventNotificationsEnabled  EventKind = "notifications_enabled"
	EventNotificationsDisabled EventKind = "notifications_disabled"
)

type NotificationDetails struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// WebhookEvent is the decoded lifecycle payload. Unknown kinds and events
// without a fid are rejected, not best-effort parsed.
type WebhookEvent struct {
	Kind    EventKind            `json:"event"`
	FID     uint64               `json:"fid"`
	Details *NotificationDetails `json:"notificationDetails,omitempty"`
}

var ErrMalformedEvent = errors.New("malformed webhook event")

// EventIngest applies lifecycle events to user notification state. It is the
// only writer of the destination fields; re-applying an event is a pure
// overwrite.
type EventIngest struct {
	db        *gorm.DB
	producers *Producers
}

func NewEventIngest(db *gorm.DB, producers *Producers) *EventIngest {
	return &EventIngest{db: db, producers: producers}
}

func (s *EventIngest) Apply(event WebhookEvent) error {
	if event.FID == 0 {
		return ErrMalformedEvent
	}

	switch event.Kind {
	case EventFrameAdded, EventNotificationsEnabled:
		return s.enable(event)
	case EventFrameRemoved, EventNotificationsDisabled:
		return s.disable(event)
	default:
		return ErrMalformedEvent
	}
}

func (s *EventIngest) enable(event WebhookEvent) error {
	user, err := s.findOrCreateUser(event.FID)
	if err != nil {
		return err
	}

	// An add without credentials means the app was added but notifications
	// stay off. Nothing to store and nothing to welcome yet.
	if event.Details == nil || event.Details.Token == "" || event.Details.URL == "" {
		return nil
	}

	updates := map[string]interface{}{
		"notifications_enabled": true,
		"notification_token":    event.Details.Token,
		"notification_url":      event.Details.URL,
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to enable notifications for fid %d: %w", event.FID, err)
	}

	if err := s.producers.SendWelcome(user); err != nil {
		// The destination is stored; the welcome can be retried by a later
		// enable event without duplicating thanks to its one-shot key.
		log.Printf("Webhook: failed to queue welcome for fid %d: %v", event.FID, err)
	}
	return nil
}

func (s *EventIngest) disable(event WebhookEvent) error {
	updates := map[string]interface{}{
		"notifications_enabled": false,
		"notification_token":    nil,
		"notification_url":      nil,
	}
	err := s.db.Model(&models.User{}).Where("fid = ?", event.FID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to disable notifications for fid %d: %w", event.FID, err)
	}
	return nil
}

// findOrCreateUser returns the user for a fid, creating a disabled record on
// first contact so later events land on an existing row.
func (s *EventIngest) findOrCreateUser(fid uint64) (*models.User, error) {
	var user models.User
	err := s.db.Where("fid = ?", fid).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up fid %d: %w", fid, err)
	}

	user = models.User{FID: fid}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user for fid %d: %w", fid, err)
	}
	return &user, nil
}
