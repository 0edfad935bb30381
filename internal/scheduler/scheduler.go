// Package scheduler persists follow-up reminders for messages that need
// a check-back and answers due-item queries.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/internal/store"
)

// Stats is a point-in-time aggregate over the follow-up collection,
// computed on demand and never cached.
type Stats struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// Scheduler manages follow-up reminders. All mutations go through a
// single mutex so a continuous-mode loop and a manual follow-up check
// cannot lose updates to each other.
type Scheduler struct {
	store  store.FollowUpStore
	logger *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// New creates a Scheduler over the given store.
func New(st store.FollowUpStore, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Schedule records a follow-up for messageID due delayDays from now.
// Scheduling is idempotent on message ID: an existing pending follow-up
// has its due date and priority overwritten (latest call wins,
// created_at preserved); a completed one is revived as a new pending
// review cycle. Two calls never yield two entries.
func (s *Scheduler) Schedule(
	ctx context.Context,
	messageID, subject, sender string,
	priority model.Priority,
	delayDays int,
) (model.FollowUp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	fu := model.FollowUp{
		MessageID: messageID,
		Subject:   subject,
		Sender:    sender,
		DueAt:     now.AddDate(0, 0, delayDays),
		Priority:  priority,
		Status:    model.FollowUpPending,
		CreatedAt: now,
	}

	existing, err := s.store.GetFollowUp(ctx, messageID)
	if err != nil {
		return model.FollowUp{}, fmt.Errorf("checking existing follow-up: %w", err)
	}
	if existing != nil {
		fu.CreatedAt = existing.CreatedAt
	}

	if err := s.store.UpsertFollowUp(ctx, fu); err != nil {
		return model.FollowUp{}, fmt.Errorf("scheduling follow-up: %w", err)
	}

	s.logger.Info("follow-up scheduled",
		"message_id", messageID,
		"due_at", fu.DueAt,
		"priority", priority,
	)
	return fu, nil
}

// DueItems returns pending follow-ups with due_at <= asOf, ordered by
// ascending due date with descending priority score as tiebreak.
func (s *Scheduler) DueItems(
	ctx context.Context, asOf time.Time,
) ([]model.FollowUp, error) {
	return s.store.DueFollowUps(ctx, asOf)
}

// Complete transitions the follow-up for messageID to completed. It is
// a no-op, not an error, when the follow-up is absent or already
// completed.
func (s *Scheduler) Complete(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	done, err := s.store.CompleteFollowUp(ctx, messageID, s.now())
	if err != nil {
		return fmt.Errorf("completing follow-up: %w", err)
	}
	if done {
		s.logger.Info("follow-up completed", "message_id", messageID)
	}
	return nil
}

// Cancel removes the follow-up for messageID if present.
func (s *Scheduler) Cancel(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteFollowUp(ctx, messageID); err != nil {
		return fmt.Errorf("cancelling follow-up: %w", err)
	}
	return nil
}

// Stats returns pending, completed, and overdue counts as of now.
func (s *Scheduler) Stats(ctx context.Context) (Stats, error) {
	pending, completed, overdue, err := s.store.CountFollowUps(ctx, s.now())
	if err != nil {
		return Stats{}, fmt.Errorf("computing follow-up stats: %w", err)
	}
	return Stats{Pending: pending, Completed: completed, Overdue: overdue}, nil
}

// SetNowFunc overrides the scheduler's clock. Used by tests.
func (s *Scheduler) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
