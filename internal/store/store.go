// Package store provides SQLite persistence for follow-up reminders and
// the similarity-index corpus.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/inboxpilot/internal/model"
)

// StorageError indicates the durable store was unreadable or unwritable.
// Load-time storage errors are fail-open: callers start with an empty
// collection rather than crashing.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err (or any error in its chain) is a
// StorageError.
func IsStorageError(err error) bool {
	var stErr *StorageError
	return errors.As(err, &stErr)
}

// FollowUpStore is the persistence contract for follow-up reminders.
type FollowUpStore interface {
	// UpsertFollowUp inserts the follow-up or replaces the existing row
	// with the same message ID.
	UpsertFollowUp(ctx context.Context, fu model.FollowUp) error

	// GetFollowUp returns the follow-up for messageID, or nil when none
	// exists.
	GetFollowUp(ctx context.Context, messageID string) (*model.FollowUp, error)

	// DueFollowUps returns pending follow-ups with due_at <= asOf,
	// ordered by ascending due date, then descending priority score.
	DueFollowUps(ctx context.Context, asOf time.Time) ([]model.FollowUp, error)

	// CompleteFollowUp transitions a pending follow-up to completed.
	// Returns false when no pending row matched (already completed or
	// absent).
	CompleteFollowUp(ctx context.Context, messageID string, at time.Time) (bool, error)

	// DeleteFollowUp removes the follow-up for messageID if present.
	DeleteFollowUp(ctx context.Context, messageID string) error

	// CountFollowUps returns pending, completed, and overdue-pending
	// counts as of asOf.
	CountFollowUps(ctx context.Context, asOf time.Time) (pending, completed, overdue int, err error)
}

// RetrievalStore is the persistence contract for the similarity corpus.
type RetrievalStore interface {
	// AddRetrievalRecord appends one (message, reply, embedding) record.
	AddRetrievalRecord(ctx context.Context, rec model.RetrievalRecord) error

	// ListRetrievalRecords returns the full corpus with embeddings.
	ListRetrievalRecords(ctx context.Context) ([]model.RetrievalRecord, error)

	// CountRetrievalRecords returns the corpus size.
	CountRetrievalRecords(ctx context.Context) (int, error)
}
