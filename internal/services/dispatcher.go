package services

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/arnold/runcast-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	dispatchBatchLimit  = 50
	maxDeliveryAttempts = 3
	rateLimitWindow     = time.Minute
	rateLimitMax        = 100

	reasonDestinationUnavailable = "destination unavailable"
	reasonRateLimited            = "rate limit exceeded"
)

// Dispatcher drains due queue entries on each tick: resolve destinations,
// group by destination URL, enforce the per-destination rate limit, send
// batches and write each entry's outcome back to the store. Exactly one pass
// runs at a time; overlapping ticks are dropped, not queued.
type Dispatcher struct {
	db      *gorm.DB
	store   *QueueStore
	limiter *SlidingWindowLimiter
	sender  Sender
	enabled bool
	running atomic.Bool
	now     func() time.Time
}

func NewDispatcher(db *gorm.DB, store *QueueStore, limiter *SlidingWindowLimiter, sender Sender, enabled bool) *Dispatcher {
	return &Dispatcher{
		db:      db,
		store:   store,
		limiter: limiter,
		sender:  sender,
		enabled: enabled,
		now:     time.Now,
	}
}

type deliverable struct {
	entry *models.NotificationEntry
	token string
}

// RunOnce executes one dispatch pass. Per-entry delivery errors are absorbed
// into entry state and never returned; only a storage failure aborts the
// pass, leaving untouched entries pending for the next tick.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		log.Println("Dispatch: previous pass still running, skipping tick")
		return nil
	}
	defer d.running.Store(false)

	if !d.enabled {
		return nil
	}

	now := d.now()
	entries, err := d.store.DueForDispatch(now, maxDeliveryAttempts, dispatchBatchLimit)
	if err != nil {
		log.Printf("Dispatch: due scan failed: %v", err)
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	users, err := d.loadUsers(entries)
	if err != nil {
		log.Printf("Dispatch: user lookup failed: %v", err)
		return err
	}

	// Group deliverable entries by destination URL, keeping the due scan's
	// scheduled_for ordering within each group. Entries without a usable
	// destination resolve immediately and consume no rate-limit budget.
	groups := map[string][]deliverable{}
	var order []string
	for i := range entries {
		entry := &entries[i]
		user, ok := users[entry.UserID]
		if !ok {
			d.resolveUnavailable(entry)
			continue
		}
		url, token, ok := user.Destination()
		if !ok {
			d.resolveUnavailable(entry)
			continue
		}
		if _, seen := groups[url]; !seen {
			order = append(order, url)
		}
		groups[url] = append(groups[url], deliverable{entry: entry, token: token})
	}

	for _, url := range order {
		d.dispatchGroup(ctx, now, url, groups[url])
	}
	return nil
}

func (d *Dispatcher) loadUsers(entries []models.NotificationEntry) (map[uuid.UUID]models.User, error) {
	ids := make([]uuid.UUID, 0, len(entries))
	seen := map[uuid.UUID]bool{}
	for _, entry := range entries {
		if !seen[entry.UserID] {
			seen[entry.UserID] = true
			ids = append(ids, entry.UserID)
		}
	}

	var users []models.User
	if err := d.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}

func (d *Dispatcher) dispatchGroup(ctx context.Context, now time.Time, url string, group []deliverable) {
	if !d.limiter.Admit(url, len(group)) {
		for _, item := range group {
			d.skip(item.entry, reasonRateLimited)
		}
		return
	}

	batch := BatchRequest{Notifications: make([]BatchNotification, 0, len(group))}
	for _, item := range group {
		batch.Notifications = append(batch.Notifications, BatchNotification{
			NotificationID: item.entry.ID.String(),
			Title:          item.entry.Title,
			Body:           item.entry.Body,
			TargetURL:      item.entry.TargetURL,
			Token:          item.token,
		})
	}

	result, err := d.sender.SendBatch(ctx, url, batch)
	if err != nil {
		// Transport-level failure: every entry in the batch failed this attempt.
		for _, item := range group {
			d.recordFailure(item.entry, err.Error())
		}
		return
	}

	succeeded := make(map[string]bool, len(result.Successes))
	for _, s := range result.Successes {
		succeeded[s.NotificationID] = true
	}
	failed := make(map[string]string, len(result.Failures))
	for _, f := range result.Failures {
		failed[f.NotificationID] = f.Error
	}

	for _, item := range group {
		id := item.entry.ID.String()
		if succeeded[id] {
			d.markSent(item.entry, now)
			continue
		}
		if reason, ok := failed[id]; ok {
			d.recordFailure(item.entry, reason)
			continue
		}
		d.recordFailure(item.entry, "no result from destination")
	}
}

func (d *Dispatcher) markSent(entry *models.NotificationEntry, now time.Time) {
	entry.Status = models.StatusSent
	entry.SentAt = &now
	entry.ErrorMessage = nil
	if err := d.store.Save(entry); err != nil {
		log.Printf("Dispatch: failed to mark %s sent: %v", entry.ID, err)
	}
}

func (d *Dispatcher) recordFailure(entry *models.NotificationEntry, reason string) {
	entry.RetryCount++
	entry.ErrorMessage = &reason
	if entry.RetryCount >= maxDeliveryAttempts {
		entry.Status = models.StatusFailed
	}
	if err := d.store.Save(entry); err != nil {
		log.Printf("Dispatch: failed to record failure for %s: %v", entry.ID, err)
	}
}

// resolveUnavailable terminates an entry whose user has no usable endpoint.
// Retrying cannot help until an enable event rewrites the destination, and
// the welcome producer fires again at that point.
func (d *Dispatcher) resolveUnavailable(entry *models.NotificationEntry) {
	reason := reasonDestinationUnavailable
	entry.Status = models.StatusFailed
	entry.ErrorMessage = &reason
	if err := d.store.Save(entry); err != nil {
		log.Printf("Dispatch: failed to resolve %s: %v", entry.ID, err)
	}
}

// skip terminates an entry without attempting delivery. Skipped entries are
// not re-selected by later passes; the recorded reason is the operator's
// handle for manual requeueing.
func (d *Dispatcher) skip(entry *models.NotificationEntry, reason string) {
	entry.Status = models.StatusSkipped
	entry.ErrorMessage = &reason
	if err := d.store.Save(entry); err != nil {
		log.Printf("Dispatch: failed to skip %s: %v", entry.ID, err)
	}
}
