package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationWelcome           NotificationType = "welcome"
	NotificationDailyReminder     NotificationType = "daily_reminder"
	NotificationEveningReminder   NotificationType = "evening_reminder"
	NotificationWeeklyAchievement NotificationType = "weekly_achievement"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
	StatusSkipped NotificationStatus = "skipped"
)

// NotificationEntry is one queued outbound notification. Status moves
// pending -> sent | failed | skipped and never leaves a terminal state.
type NotificationEntry struct {
	ID             uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID          `json:"userId" gorm:"type:uuid;index;not null"`
	Type           NotificationType   `json:"type" gorm:"not null"`
	IdempotencyKey string             `json:"idempotencyKey" gorm:"uniqueIndex;not null"`
	Title          string             `json:"title" gorm:"not null"`
	Body           string             `json:"body"`
	TargetURL      string             `json:"targetUrl"`
	ScheduledFor   time.Time          `json:"scheduledFor" gorm:"index;not null"`
	Status         NotificationStatus `json:"status" gorm:"index;not null;default:pending"`
	RetryCount     int                `json:"retryCount" gorm:"default:0"`
	ErrorMessage   *string            `json:"errorMessage"`
	SentAt         *time.Time         `json:"sentAt"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func (n *NotificationEntry) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
