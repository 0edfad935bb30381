package model

import "time"

// FollowUpStatus is the lifecycle state of a follow-up reminder.
type FollowUpStatus string

const (
	FollowUpPending   FollowUpStatus = "pending"
	FollowUpCompleted FollowUpStatus = "completed"
)

// FollowUp is a scheduled reminder to check back on a message. At most
// one follow-up exists per message ID; re-scheduling overwrites the due
// date rather than creating a second entry.
type FollowUp struct {
	// MessageID is the message this follow-up tracks. It is the
	// follow-up's identity.
	MessageID string `json:"message_id" db:"message_id"`

	// Subject is the original message subject, kept for display.
	Subject string `json:"subject" db:"subject"`

	// Sender is the original message sender, kept for display.
	Sender string `json:"sender" db:"sender"`

	// DueAt is when the follow-up becomes due.
	DueAt time.Time `json:"due_at" db:"due_at"`

	// Priority is the classification priority at scheduling time, used
	// as a tiebreak when ordering due items.
	Priority Priority `json:"priority" db:"priority"`

	// Status is pending or completed. Follow-ups are never physically
	// deleted in normal operation.
	Status FollowUpStatus `json:"status" db:"status"`

	// CreatedAt is when the follow-up was first scheduled.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// CompletedAt is when the follow-up was marked completed, nil while
	// pending.
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
