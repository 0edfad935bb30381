// Package imapsmtp implements mailbox.Mailbox over IMAP (fetch, flags)
// and SMTP (send).
package imapsmtp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
)

// imapConn wraps go-imap v2 for connecting to and querying IMAP servers.
type imapConn struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// connect establishes a connection to the IMAP server, authenticates,
// and selects INBOX. The caller is responsible for calling Logout on
// the returned client.
func (c *imapConn) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authenticating %s: %w", c.username, err)
	}

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	return client, nil
}

// fetchUnread searches INBOX for unseen messages and fetches envelope
// plus body for up to max of them, oldest first.
func (c *imapConn) fetchUnread(
	ctx context.Context, max int,
) ([]*parsedMessage, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unread messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	if max > 0 && len(uids) > max {
		uids = uids[:max]
	}

	uidSet := imap.UIDSetNum(uids...)

	// Peek so fetching does not set \Seen; the pipeline marks messages
	// read explicitly after processing.
	bodySection := &imap.FetchItemBodySection{Peek: true}

	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)

	var parsed []*parsedMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		pm := parsedFromBuffer(buf, bodySection)
		parsed = append(parsed, pm)
	}

	if err := fetchCmd.Close(); err != nil {
		return parsed, fmt.Errorf("fetching unread messages: %w", err)
	}

	return parsed, nil
}

// setFlags modifies flags on a message. If add is true, the flags are
// added; otherwise they are removed.
func (c *imapConn) setFlags(
	ctx context.Context,
	uid uint32,
	flags []imap.Flag,
	add bool,
) error {
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	uidSet := imap.UIDSetNum(imap.UID(uid))

	op := imap.StoreFlagsAdd
	if !add {
		op = imap.StoreFlagsDel
	}

	storeCmd := client.Store(uidSet, &imap.StoreFlags{
		Op:     op,
		Silent: true,
		Flags:  flags,
	}, nil)

	return storeCmd.Close()
}

// parsedMessage holds one fetched message with its decoded text body.
type parsedMessage struct {
	UID       uint32
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	TextBody  string
}

// parsedFromBuffer extracts envelope fields and the plain-text body
// from a FetchMessageBuffer.
func parsedFromBuffer(
	buf *imapclient.FetchMessageBuffer,
	bodySection *imap.FetchItemBodySection,
) *parsedMessage {
	pm := &parsedMessage{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		pm.MessageID = buf.Envelope.MessageID
		pm.Subject = buf.Envelope.Subject
		pm.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			if from.Name != "" {
				pm.From = fmt.Sprintf("%s <%s>", from.Name, from.Addr())
			} else {
				pm.From = from.Addr()
			}
		}
	}

	rawBody := buf.FindBodySection(bodySection)
	if rawBody != nil {
		pm.TextBody = extractTextBody(rawBody)
	}

	return pm
}

// extractTextBody parses a raw RFC 2822 message using go-message and
// returns the text/plain body, falling back to stripped HTML and then
// to the raw bytes.
func extractTextBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// If parsing fails, treat the whole thing as plain text.
		return string(raw)
	}
	defer mr.Close()

	var textBody, htmlBody string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody = string(body)
		}
	}

	if textBody != "" {
		return textBody
	}
	return stripHTML(htmlBody)
}

// stripHTML removes tags from an HTML body as a crude plain-text
// fallback when no text/plain part exists.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
