package services

import (
	"testing"

	"github.com/arnold/runcast-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestIngest(t *testing.T, db *gorm.DB) *EventIngest {
	t.Helper()
	store := NewQueueStore(db)
	producers := NewProducers(db, store, NewResolver(store), "https://runcast.app")
	return NewEventIngest(db, producers)
}

func userByFID(t *testing.T, db *gorm.DB, fid uint64) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "fid = ?", fid).Error)
	return user
}

func TestIngestEnableWithCredentials(t *testing.T) {
	db := newTestDB(t)
	ingest := newTestIngest(t, db)

	err := ingest.Apply(WebhookEvent{
		Kind: EventNotificationsEnabled,
		FID:  500,
		Details: &NotificationDetails{
			Token: "tok-500",
			URL:   "https://notify.example/500",
		},
	})
	require.NoError(t, err)

	user := userByFID(t, db, 500)
	assert.True(t, user.NotificationsEnabled)
	require.NotNil(t, user.NotificationToken)
	assert.Equal(t, "tok-500", *user.NotificationToken)
	require.NotNil(t, user.NotificationURL)
	assert.Equal(t, "https://notify.example/500", *user.NotificationURL)

	// Welcome queued exactly once, even if the event is replayed
	require.NoError(t, ingest.Apply(WebhookEvent{
		Kind:    EventNotificationsEnabled,
		FID:     500,
		Details: &NotificationDetails{Token: "tok-500", URL: "https://notify.example/500"},
	}))
	var count int64
	db.Model(&models.NotificationEntry{}).Where("type = ?", models.NotificationWelcome).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIngestEnableWithoutCredentials(t *testing.T) {
	db := newTestDB(t)
	ingest := newTestIngest(t, db)

	require.NoError(t, ingest.Apply(WebhookEvent{Kind: EventFrameAdded, FID: 501}))

	// User record exists but notifications stay off and nothing is queued
	user := userByFID(t, db, 501)
	assert.False(t, user.NotificationsEnabled)
	assert.Nil(t, user.NotificationToken)

	var count int64
	db.Model(&models.NotificationEntry{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestIngestDisableClearsDestination(t *testing.T) {
	db := newTestDB(t)
	ingest := newTestIngest(t, db)

	require.NoError(t, ingest.Apply(WebhookEvent{
		Kind:    EventNotificationsEnabled,
		FID:     502,
		Details: &NotificationDetails{Token: "tok", URL: "https://notify.example/502"},
	}))
	require.NoError(t, ingest.Apply(WebhookEvent{Kind: EventNotificationsDisabled, FID: 502}))

	user := userByFID(t, db, 502)
	assert.False(t, user.NotificationsEnabled)
	assert.Nil(t, user.NotificationToken)
	assert.Nil(t, user.NotificationURL)

	// Replaying the disable is a pure overwrite
	require.NoError(t, ingest.Apply(WebhookEvent{Kind: EventFrameRemoved, FID: 502}))
}

func TestIngestDisableUnknownUser(t *testing.T) {
	db := newTestDB(t)
	ingest := newTestIngest(t, db)

	require.NoError(t, ingest.Apply(WebhookEvent{Kind: EventFrameRemoved, FID: 503}))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestIngestRejectsMalformedEvents(t *testing.T) {
	db := newTestDB(t)
	ingest := newTestIngest(t, db)

	err := ingest.Apply(WebhookEvent{Kind: EventNotificationsEnabled})
	assert.ErrorIs(t, err, ErrMalformedEvent)

	err = ingest.Apply(WebhookEvent{Kind: "frame_exploded", FID: 504})
	assert.ErrorIs(t, err, ErrMalformedEvent)

	var users, entries int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.NotificationEntry{}).Count(&entries)
	assert.Equal(t, int64(0), users)
	assert.Equal(t, int64(0), entries)
}
