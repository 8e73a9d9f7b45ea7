package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arnold/runcast-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.NotificationEntry{}))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, fid uint64, url, token string) *models.User {
	t.Helper()

	user := &models.User{FID: fid}
	if url != "" && token != "" {
		user.NotificationsEnabled = true
		user.NotificationURL = &url
		user.NotificationToken = &token
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestEntry(userID uuid.UUID, key string, scheduledFor time.Time) *models.NotificationEntry {
	return &models.NotificationEntry{
		UserID:         userID,
		Type:           models.NotificationDailyReminder,
		IdempotencyKey: key,
		Title:          "Time to run",
		Body:           "Lace up.",
		TargetURL:      "https://runcast.app",
		ScheduledFor:   scheduledFor,
		Status:         models.StatusPending,
	}
}

func reloadEntry(t *testing.T, db *gorm.DB, id uuid.UUID) models.NotificationEntry {
	t.Helper()

	var entry models.NotificationEntry
	require.NoError(t, db.First(&entry, "id = ?", id).Error)
	return entry
}
