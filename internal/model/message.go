package model

import "time"

// Message is a single inbound email as returned by the mailbox service.
// It is immutable once fetched; identity is the provider's message ID.
type Message struct {
	// ID is the mailbox provider's unique identifier for this message.
	ID string `json:"id"`

	// ThreadID identifies the conversation thread the message belongs to.
	// For IMAP backends this is the RFC 5322 Message-ID, used to set
	// In-Reply-To/References on outgoing replies.
	ThreadID string `json:"thread_id"`

	// Sender is the raw From header value, either "Name <addr>" or a
	// bare address.
	Sender string `json:"sender"`

	// Subject is the message subject line.
	Subject string `json:"subject"`

	// Date is when the message was sent.
	Date time.Time `json:"date"`

	// Body is the plain-text message body.
	Body string `json:"body"`

	// Snippet is a short provider-supplied preview of the body.
	Snippet string `json:"snippet"`
}
