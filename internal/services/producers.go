package services

import (
	"fmt"
	"log"
	"time"

	"github.com/arnold/runcast-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const retentionPeriod = 30 * 24 * time.Hour

// Producers holds the scheduled jobs that feed the notification queue.
// Each job scans candidate users and reserves idempotent entries; the
// resolver's key uniqueness makes a re-run of any job a no-op.
type Producers struct {
	db       *gorm.DB
	store    *QueueStore
	resolver *Resolver
	appURL   string
	now      func() time.Time
}

func NewProducers(db *gorm.DB, store *QueueStore, resolver *Resolver, appURL string) *Producers {
	return &Producers{
		db:       db,
		store:    store,
		resolver: resolver,
		appURL:   appURL,
		now:      time.Now,
	}
}

func welcomeKey(userID uuid.UUID) string {
	return fmt.Sprintf("welcome_%s", userID)
}

func dayKey(notifType models.NotificationType, userID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s_%s_%s", notifType, userID, day.UTC().Format("2006-01-02"))
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SendWelcome queues the one-shot welcome notification for a user. The key
// carries no date component, so at most one welcome ever exists per user.
func (p *Producers) SendWelcome(user *models.User) error {
	now := p.now()
	_, err := p.resolver.Reserve(welcomeKey(user.ID), func() *models.NotificationEntry {
		return &models.NotificationEntry{
			UserID:       user.ID,
			Type:         models.NotificationWelcome,
			Title:        "Welcome to Runcast!",
			Body:         "Notifications are on. We'll nudge you when it's time to run.",
			TargetURL:    p.appURL,
			ScheduledFor: now,
		}
	})
	return err
}

// RunDailyReminder queues the morning reminder for every user who has
// notifications on and has not been reminded today, then stamps
// last_run_reminder_sent so a retried trigger run selects nobody twice.
func (p *Producers) RunDailyReminder() (int, error) {
	now := p.now()
	today := startOfDayUTC(now)

	var users []models.User
	err := p.db.
		Where("notifications_enabled = ? AND notification_token IS NOT NULL", true).
		Where("last_run_reminder_sent IS NULL OR last_run_reminder_sent < ?", today).
		Find(&users).Error
	if err != nil {
		return 0, fmt.Errorf("failed to select daily reminder candidates: %w", err)
	}

	queued := 0
	for i := range users {
		user := &users[i]
		outcome, err := p.resolver.Reserve(dayKey(models.NotificationDailyReminder, user.ID, now), func() *models.NotificationEntry {
			return &models.NotificationEntry{
				UserID:       user.ID,
				Type:         models.NotificationDailyReminder,
				Title:        "Time to run",
				Body:         "Lace up and log today's run to keep your streak alive.",
				TargetURL:    p.appURL,
				ScheduledFor: now,
			}
		})
		if err != nil {
			log.Printf("Reminder: failed to queue daily reminder for %s: %v", user.ID, err)
			continue
		}
		if outcome == OutcomeCreated {
			queued++
		}

		if err := p.db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("last_run_reminder_sent", now).Error; err != nil {
			log.Printf("Reminder: failed to stamp reminder time for %s: %v", user.ID, err)
		}
	}
	return queued, nil
}

// RunEveningReminder queues a follow-up for users reminded this morning who
// still have no run logged today. Its key namespace is distinct from the
// morning reminder's, so both can exist for the same day.
func (p *Producers) RunEveningReminder() (int, error) {
	now := p.now()
	today := startOfDayUTC(now)

	var users []models.User
	err := p.db.
		Where("notifications_enabled = ? AND notification_token IS NOT NULL", true).
		Where("last_run_reminder_sent >= ?", today).
		Where("last_run_date IS NULL OR last_run_date < ?", today).
		Find(&users).Error
	if err != nil {
		return 0, fmt.Errorf("failed to select evening reminder candidates: %w", err)
	}

	queued := 0
	for i := range users {
		user := &users[i]
		outcome, err := p.resolver.Reserve(dayKey(models.NotificationEveningReminder, user.ID, now), func() *models.NotificationEntry {
			return &models.NotificationEntry{
				UserID:       user.ID,
				Type:         models.NotificationEveningReminder,
				Title:        "Still time for a run",
				Body:         "No run logged yet today. A short one still counts.",
				TargetURL:    p.appURL,
				ScheduledFor: now,
			}
		})
		if err != nil {
			log.Printf("Reminder: failed to queue evening reminder for %s: %v", user.ID, err)
			continue
		}
		if outcome == OutcomeCreated {
			queued++
		}
	}
	return queued, nil
}

// RunWeeklyAchievement queues the achievement roundup for every user with
// notifications on. The key is scoped to the run's calendar date, so the job
// is once-per-day idempotent and is meant to be scheduled weekly.
func (p *Producers) RunWeeklyAchievement() (int, error) {
	now := p.now()

	var users []models.User
	err := p.db.
		Where("notifications_enabled = ? AND notification_token IS NOT NULL", true).
		Find(&users).Error
	if err != nil {
		return 0, fmt.Errorf("failed to select weekly achievement candidates: %w", err)
	}

	queued := 0
	for i := range users {
		user := &users[i]
		outcome, err := p.resolver.Reserve(dayKey(models.NotificationWeeklyAchievement, user.ID, now), func() *models.NotificationEntry {
			return &models.NotificationEntry{
				UserID:       user.ID,
				Type:         models.NotificationWeeklyAchievement,
				Title:        "Your week in running",
				Body:         "Your weekly achievements are in. See how the week stacked up.",
				TargetURL:    p.appURL + "/achievements",
				ScheduledFor: now,
			}
		})
		if err != nil {
			log.Printf("Achievement: failed to queue weekly roundup for %s: %v", user.ID, err)
			continue
		}
		if outcome == OutcomeCreated {
			queued++
		}
	}
	return queued, nil
}

// Cleanup removes terminal entries older than the retention period. Pending
// entries are never pruned.
func (p *Producers) Cleanup() (int64, error) {
	cutoff := p.now().Add(-retentionPeriod)
	return p.store.DeleteOlderThan(cutoff, []models.NotificationStatus{
		models.StatusSent,
		models.StatusFailed,
		models.StatusSkipped,
	})
}
