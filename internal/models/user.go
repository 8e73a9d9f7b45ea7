package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	FID                  uint64         `json:"fid" gorm:"column:fid;uniqueIndex;not null"`
	Username             string         `json:"username"`
	DisplayName          string         `json:"displayName"`
	AvatarURL            string         `json:"avatarUrl"`
	NotificationsEnabled bool           `json:"notificationsEnabled" gorm:"default:false"`
	NotificationToken    *string        `json:"-"`
	NotificationURL      *string        `json:"-"`
	LastRunDate          *time.Time     `json:"lastRunDate"`
	LastRunReminderSent  *time.Time     `json:"-"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}

// Destination returns the user's notification endpoint, if one is set.
func (u *User) Destination() (url, token string, ok bool) {
	if u.NotificationURL == nil || *u.NotificationURL == "" ||
		u.NotificationToken == nil || *u.NotificationToken == "" {
		return "", "", false
	}
	return *u.NotificationURL, *u.NotificationToken, true
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
