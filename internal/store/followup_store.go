package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/inboxpilot/internal/model"
)

// UpsertFollowUp inserts the follow-up or replaces the existing row with
// the same message ID.
func (s *SQLiteStore) UpsertFollowUp(ctx context.Context, fu model.FollowUp) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follow_ups
			(message_id, subject, sender, due_at, priority, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			subject      = excluded.subject,
			sender       = excluded.sender,
			due_at       = excluded.due_at,
			priority     = excluded.priority,
			status       = excluded.status,
			completed_at = excluded.completed_at`,
		fu.MessageID, fu.Subject, fu.Sender, fu.DueAt, fu.Priority,
		fu.Status, fu.CreatedAt, fu.CompletedAt,
	)
	if err != nil {
		return &StorageError{
			Op:  "upsert_follow_up",
			Err: fmt.Errorf("upserting follow-up %s: %w", fu.MessageID, err),
		}
	}
	return nil
}

// GetFollowUp returns the follow-up for messageID, or nil when none
// exists.
func (s *SQLiteStore) GetFollowUp(
	ctx context.Context, messageID string,
) (*model.FollowUp, error) {
	var fu model.FollowUp
	err := s.db.GetContext(ctx, &fu,
		`SELECT message_id, subject, sender, due_at, priority, status,
		        created_at, completed_at
		 FROM follow_ups WHERE message_id = ?`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{
			Op:  "get_follow_up",
			Err: fmt.Errorf("reading follow-up %s: %w", messageID, err),
		}
	}
	return &fu, nil
}

// DueFollowUps returns pending follow-ups with due_at <= asOf, ordered
// by ascending due date, then descending priority score.
func (s *SQLiteStore) DueFollowUps(
	ctx context.Context, asOf time.Time,
) ([]model.FollowUp, error) {
	var items []model.FollowUp
	err := s.db.SelectContext(ctx, &items,
		`SELECT message_id, subject, sender, due_at, priority, status,
		        created_at, completed_at
		 FROM follow_ups
		 WHERE status = 'pending' AND due_at <= ?
		 ORDER BY due_at ASC,
		          CASE priority
		              WHEN 'high' THEN 3
		              WHEN 'medium' THEN 2
		              ELSE 1
		          END DESC`, asOf)
	if err != nil {
		return nil, &StorageError{
			Op:  "due_follow_ups",
			Err: fmt.Errorf("listing due follow-ups: %w", err),
		}
	}
	return items, nil
}

// CompleteFollowUp transitions a pending follow-up to completed. Returns
// false when no pending row matched.
func (s *SQLiteStore) CompleteFollowUp(
	ctx context.Context, messageID string, at time.Time,
) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE follow_ups
		 SET status = 'completed', completed_at = ?
		 WHERE message_id = ? AND status = 'pending'`,
		at, messageID)
	if err != nil {
		return false, &StorageError{
			Op:  "complete_follow_up",
			Err: fmt.Errorf("completing follow-up %s: %w", messageID, err),
		}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{
			Op:  "complete_follow_up",
			Err: fmt.Errorf("reading rows affected: %w", err),
		}
	}
	return n > 0, nil
}

// DeleteFollowUp removes the follow-up for messageID if present.
func (s *SQLiteStore) DeleteFollowUp(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM follow_ups WHERE message_id = ?`, messageID)
	if err != nil {
		return &StorageError{
			Op:  "delete_follow_up",
			Err: fmt.Errorf("deleting follow-up %s: %w", messageID, err),
		}
	}
	return nil
}

// CountFollowUps returns pending, completed, and overdue-pending counts
// as of asOf.
func (s *SQLiteStore) CountFollowUps(
	ctx context.Context, asOf time.Time,
) (pending, completed, overdue int, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT
		     COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		     COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		     COALESCE(SUM(CASE WHEN status = 'pending' AND due_at <= ? THEN 1 ELSE 0 END), 0)
		 FROM follow_ups`, asOf)

	if scanErr := row.Scan(&pending, &completed, &overdue); scanErr != nil {
		return 0, 0, 0, &StorageError{
			Op:  "count_follow_ups",
			Err: fmt.Errorf("counting follow-ups: %w", scanErr),
		}
	}
	return pending, completed, overdue, nil
}
