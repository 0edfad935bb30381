package imapsmtp

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-imap/v2"
	"github.com/google/uuid"

	"github.com/nhle/inboxpilot/internal/mailbox"
	"github.com/nhle/inboxpilot/internal/model"
)

const snippetLen = 140

// Config holds the IMAP and SMTP server settings for a Backend.
type Config struct {
	IMAPHost string
	IMAPPort string
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	TLS      bool
}

// Backend implements mailbox.Mailbox over IMAP and SMTP.
type Backend struct {
	conn *imapConn
	smtp smtpConfig
}

// New creates an IMAP/SMTP mailbox backend.
func New(cfg Config) *Backend {
	return &Backend{
		conn: &imapConn{
			host:     cfg.IMAPHost,
			port:     cfg.IMAPPort,
			username: cfg.Username,
			password: cfg.Password,
			tls:      cfg.TLS,
		},
		smtp: smtpConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.Username,
			Password: cfg.Password,
			TLS:      cfg.TLS,
		},
	}
}

// FetchUnread returns up to max unseen INBOX messages in mailbox order.
func (b *Backend) FetchUnread(
	ctx context.Context, max int,
) ([]model.Message, error) {
	parsed, err := b.conn.fetchUnread(ctx, max)
	if err != nil {
		return nil, &mailbox.MailboxError{Op: "fetch_unread", Err: err}
	}

	messages := make([]model.Message, 0, len(parsed))
	for _, pm := range parsed {
		messages = append(messages, model.Message{
			ID:       strconv.FormatUint(uint64(pm.UID), 10),
			ThreadID: pm.MessageID,
			Sender:   pm.From,
			Subject:  pm.Subject,
			Date:     pm.Date,
			Body:     pm.TextBody,
			Snippet:  makeSnippet(pm.TextBody),
		})
	}

	return messages, nil
}

// Send composes a reply and delivers it over SMTP.
func (b *Backend) Send(
	ctx context.Context, req mailbox.SendRequest,
) (mailbox.Receipt, error) {
	to := req.To
	if addr, err := mail.ParseAddress(req.To); err == nil {
		to = addr.Address
	}

	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), b.smtp.Host)
	body := composeReply(
		b.smtp.Username, to, req.Subject, req.Body, req.ThreadID, messageID,
	)

	if err := sendMail(b.smtp, b.smtp.Username, to, body); err != nil {
		return mailbox.Receipt{}, &mailbox.MailboxError{Op: "send", Err: err}
	}

	return mailbox.Receipt{ID: messageID, SentAt: time.Now()}, nil
}

// MarkRead sets the \Seen flag on the message.
func (b *Backend) MarkRead(ctx context.Context, messageID string) error {
	uid, err := strconv.ParseUint(messageID, 10, 32)
	if err != nil {
		return &mailbox.MailboxError{
			Op:  "mark_read",
			Err: fmt.Errorf("invalid message ID %q: %w", messageID, err),
		}
	}

	err = b.conn.setFlags(ctx, uint32(uid), []imap.Flag{imap.FlagSeen}, true)
	if err != nil {
		return &mailbox.MailboxError{Op: "mark_read", Err: err}
	}

	return nil
}

// makeSnippet collapses whitespace and truncates body for previews.
// The cut lands on a rune boundary so snippets stay valid UTF-8.
func makeSnippet(body string) string {
	collapsed := strings.Join(strings.Fields(body), " ")
	if len(collapsed) <= snippetLen {
		return collapsed
	}
	cut := snippetLen - 3
	for cut > 0 && !utf8.RuneStart(collapsed[cut]) {
		cut--
	}
	return collapsed[:cut] + "..."
}
