// Package mailbox defines the contract for mail providers: fetching
// unread messages, sending replies, and marking messages read.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/inboxpilot/internal/model"
)

// MailboxError indicates a fetch, send, or mark-read call against the
// mail provider failed.
type MailboxError struct {
	Op  string
	Err error
}

func (e *MailboxError) Error() string {
	return fmt.Sprintf("mailbox failure (%s): %v", e.Op, e.Err)
}

func (e *MailboxError) Unwrap() error { return e.Err }

// IsMailboxError reports whether err (or any error in its chain) is a
// MailboxError.
func IsMailboxError(err error) bool {
	var mbErr *MailboxError
	return errors.As(err, &mbErr)
}

// SendRequest describes an outgoing reply.
type SendRequest struct {
	// ThreadID ties the reply to the original conversation. For IMAP
	// backends it is the original Message-ID; for Gmail the thread ID.
	ThreadID string

	// To is the recipient, usually the original sender.
	To string

	// Subject and Body form the reply content.
	Subject string
	Body    string
}

// Receipt confirms a sent reply.
type Receipt struct {
	// ID identifies the sent message within the provider, or a locally
	// generated identifier when the provider returns none.
	ID string

	// SentAt is when the send completed.
	SentAt time.Time
}

// Mailbox is the mail-provider contract consumed by the pipeline.
type Mailbox interface {
	// FetchUnread returns up to max unread inbox messages in mailbox
	// order.
	FetchUnread(ctx context.Context, max int) ([]model.Message, error)

	// Send delivers a reply.
	Send(ctx context.Context, req SendRequest) (Receipt, error)

	// MarkRead flags the message as read/processed.
	MarkRead(ctx context.Context, messageID string) error
}
