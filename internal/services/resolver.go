package services

import (
	"errors"
	"fmt"

	"github.com/arnold/runcast-api/internal/models"
)

// Outcome reports what a Reserve call did.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeAlreadyExists
)

// Resolver reserves idempotency keys against the queue store. The store's
// unique index makes the reservation atomic: two concurrent reserves for the
// same key persist exactly one entry.
type Resolver struct {
	store *QueueStore
}

func NewResolver(store *QueueStore) *Resolver {
	return &Resolver{store: store}
}

// Reserve persists the drafted entry under key if no entry with that key
// exists yet. The draft is only built when the key is about to be written.
// On a storage error the caller must not assume the entry was created.
func (r *Resolver) Reserve(key string, draft func() *models.NotificationEntry) (Outcome, error) {
	entry := draft()
	entry.IdempotencyKey = key
	entry.Status = models.StatusPending

	err := r.store.Insert(entry)
	if errors.Is(err, ErrDuplicateKey) {
		return OutcomeAlreadyExists, nil
	}
	if err != nil {
		return OutcomeAlreadyExists, fmt.Errorf("failed to reserve key %s: %w", key, err)
	}
	return OutcomeCreated, nil
}
