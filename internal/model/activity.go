package model

import "time"

// ActivityRecord is the per-message entry appended to the activity log
// sink after processing completes. Logging failures are non-fatal to
// the pipeline.
type ActivityRecord struct {
	// ID is a unique identifier for this log entry.
	ID string `json:"id"`

	// Timestamp is when the record was written.
	Timestamp time.Time `json:"timestamp"`

	// MessageID is the processed message.
	MessageID string `json:"message_id"`

	// Sender and Subject identify the message for human readers.
	Sender  string `json:"sender"`
	Subject string `json:"subject"`

	// Category and Priority are the classification verdict.
	Category Category `json:"category"`
	Priority Priority `json:"priority"`

	// Summary is the one-paragraph digest of the message.
	Summary string `json:"summary"`

	// Sent records whether a reply was actually sent.
	Sent bool `json:"sent"`

	// ReplyLatencySeconds is wall-clock processing time for the
	// message, including human review.
	ReplyLatencySeconds float64 `json:"reply_latency_seconds"`

	// FollowUpDueAt is set when a follow-up was scheduled for the
	// message.
	FollowUpDueAt *time.Time `json:"follow_up_due_at,omitempty"`
}
