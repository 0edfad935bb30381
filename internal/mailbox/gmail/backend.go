// Package gmail implements mailbox.Mailbox over the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/nhle/inboxpilot/internal/mailbox"
	"github.com/nhle/inboxpilot/internal/model"
)

const user = "me"

// Config holds the OAuth credential locations for a Backend.
type Config struct {
	// CredentialsPath is the OAuth client secret JSON file.
	CredentialsPath string

	// TokenPath is where the authorized user token is cached.
	TokenPath string
}

// Backend implements mailbox.Mailbox using the Gmail API.
type Backend struct {
	svc *gmailapi.Service
}

// New creates a Gmail backend, loading the OAuth token from the
// configured token file.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	b, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(
		b,
		gmailapi.GmailReadonlyScope,
		gmailapi.GmailSendScope,
		gmailapi.GmailModifyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret file: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf(
			"loading OAuth token from %s (run the authorization flow first): %w",
			cfg.TokenPath, err,
		)
	}

	httpClient := oauthConfig.Client(ctx, tok)

	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating Gmail service: %w", err)
	}

	return &Backend{svc: svc}, nil
}

// tokenFromFile reads a cached oauth2 token.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// FetchUnread returns up to max unread inbox messages.
func (b *Backend) FetchUnread(
	ctx context.Context, max int,
) ([]model.Message, error) {
	call := b.svc.Users.Messages.List(user).
		LabelIds("INBOX", "UNREAD").
		MaxResults(int64(max)).
		Context(ctx)

	list, err := call.Do()
	if err != nil {
		return nil, &mailbox.MailboxError{Op: "fetch_unread", Err: err}
	}

	messages := make([]model.Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		full, err := b.svc.Users.Messages.Get(user, m.Id).
			Format("full").Context(ctx).Do()
		if err != nil {
			return messages, &mailbox.MailboxError{
				Op:  "fetch_unread",
				Err: fmt.Errorf("getting message %s: %w", m.Id, err),
			}
		}
		messages = append(messages, parseMessage(full))
	}

	return messages, nil
}

// Send delivers a reply as a base64 raw MIME message on the original
// thread.
func (b *Backend) Send(
	ctx context.Context, req mailbox.SendRequest,
) (mailbox.Receipt, error) {
	to := req.To
	if addr, err := mail.ParseAddress(req.To); err == nil {
		to = addr.Address
	}

	var raw strings.Builder
	raw.WriteString(fmt.Sprintf("To: %s\r\n", to))
	raw.WriteString(fmt.Sprintf("Subject: %s\r\n", req.Subject))
	raw.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	raw.WriteString("\r\n")
	raw.WriteString(req.Body)

	msg := &gmailapi.Message{
		Raw:      base64.RawURLEncoding.EncodeToString([]byte(raw.String())),
		ThreadId: req.ThreadID,
	}

	sent, err := b.svc.Users.Messages.Send(user, msg).Context(ctx).Do()
	if err != nil {
		return mailbox.Receipt{}, &mailbox.MailboxError{Op: "send", Err: err}
	}

	return mailbox.Receipt{ID: sent.Id, SentAt: time.Now()}, nil
}

// MarkRead removes the UNREAD label from the message.
func (b *Backend) MarkRead(ctx context.Context, messageID string) error {
	_, err := b.svc.Users.Messages.Modify(user, messageID,
		&gmailapi.ModifyMessageRequest{
			RemoveLabelIds: []string{"UNREAD"},
		}).Context(ctx).Do()
	if err != nil {
		return &mailbox.MailboxError{Op: "mark_read", Err: err}
	}
	return nil
}

// parseMessage maps a full Gmail message to the pipeline's Message.
func parseMessage(msg *gmailapi.Message) model.Message {
	out := model.Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}

	if msg.Payload == nil {
		return out
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "Subject":
			out.Subject = header.Value
		case "From":
			out.Sender = header.Value
		case "Date":
			if t, err := mail.ParseDate(header.Value); err == nil {
				out.Date = t
			}
		}
	}

	out.Body = plainTextBody(msg.Payload)
	return out
}

// plainTextBody walks the MIME part tree for the first text/plain body.
func plainTextBody(payload *gmailapi.MessagePart) string {
	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		// Gmail returns body data as unpadded base64url.
		data, err := base64.RawURLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data)
		}
	}

	for _, part := range payload.Parts {
		mt := strings.ToLower(part.MimeType)
		if strings.HasPrefix(mt, "text/") || strings.HasPrefix(mt, "multipart/") {
			if body := plainTextBody(part); body != "" {
				return body
			}
		}
	}

	return ""
}
