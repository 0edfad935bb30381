// Package testutil provides shared fixtures: an in-memory store and
// scripted fakes for the generation service, embedder, mailbox, and
// review prompter.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/approval"
	"github.com/nhle/inboxpilot/internal/mailbox"
	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/internal/store"
)

// NewTestStore returns an in-memory SQLite store, closed at test end.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// TestMessage returns a plausible inbound message for tests.
func TestMessage(id string) model.Message {
	return model.Message{
		ID:       id,
		ThreadID: "<thread-" + id + "@example.com>",
		Sender:   "Ada Lovelace <ada@example.com>",
		Subject:  "Quarterly report",
		Date:     time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Body:     "Hi, could you send over the quarterly report by Friday?",
		Snippet:  "Hi, could you send over the quarterly report by Friday?",
	}
}

// FakeGenerator replays scripted JSON completions in order. A queued
// error is returned instead of a completion. Prompts records what each
// call was asked.
type FakeGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	Calls     int
	Prompts   []string
}

// Queue appends a JSON completion to replay.
func (f *FakeGenerator) Queue(jsonText string) *FakeGenerator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, jsonText)
	f.errs = append(f.errs, nil)
	return f
}

// QueueErr appends a failing call.
func (f *FakeGenerator) QueueErr(err error) *FakeGenerator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, "")
	f.errs = append(f.errs, err)
	return f
}

func (f *FakeGenerator) CompleteJSON(
	ctx context.Context, system, prompt string, out any,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Calls >= len(f.responses) {
		return fmt.Errorf("unexpected generation call %d", f.Calls+1)
	}
	f.Prompts = append(f.Prompts, prompt)
	resp, err := f.responses[f.Calls], f.errs[f.Calls]
	f.Calls++
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(resp), out)
}

// FakeEmbedder maps exact texts to vectors. Unknown texts get Default;
// a non-nil Err fails every call.
type FakeEmbedder struct {
	Vectors map[string][]float32
	Default []float32
	Err     error
}

func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if v, ok := f.Vectors[text]; ok {
		return v, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return []float32{1, 0, 0}, nil
}

// FakeMailbox serves scripted unread messages and records sends and
// mark-read calls.
type FakeMailbox struct {
	mu       sync.Mutex
	Unread   []model.Message
	FetchErr error
	SendErr  error

	sent []mailbox.SendRequest
	read []string
}

func (f *FakeMailbox) FetchUnread(ctx context.Context, max int) ([]model.Message, error) {
	if f.FetchErr != nil {
		return nil, &mailbox.MailboxError{Op: "fetch_unread", Err: f.FetchErr}
	}
	if len(f.Unread) > max {
		return f.Unread[:max], nil
	}
	return f.Unread, nil
}

func (f *FakeMailbox) Send(ctx context.Context, req mailbox.SendRequest) (mailbox.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SendErr != nil {
		return mailbox.Receipt{}, &mailbox.MailboxError{Op: "send", Err: f.SendErr}
	}
	f.sent = append(f.sent, req)
	return mailbox.Receipt{
		ID:     fmt.Sprintf("receipt-%d", len(f.sent)),
		SentAt: time.Now(),
	}, nil
}

func (f *FakeMailbox) MarkRead(ctx context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = append(f.read, messageID)
	return nil
}

// Sent returns the send requests recorded so far.
func (f *FakeMailbox) Sent() []mailbox.SendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailbox.SendRequest(nil), f.sent...)
}

// MarkedRead returns the message IDs marked read so far.
func (f *FakeMailbox) MarkedRead() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.read...)
}

// ScriptedPrompter replays review decisions in order and answers
// follow-up reviews with CompleteFollowUps. It records what each
// Present call showed the reviewer.
type ScriptedPrompter struct {
	mu        sync.Mutex
	Decisions []approval.Decision
	Err       error

	// CompleteFollowUps makes ReviewFollowUp answer yes.
	CompleteFollowUps bool

	Presented       int
	Classifications []model.Classification
	Summaries       []model.Summary
	Reviewed        []string
}

func (s *ScriptedPrompter) Present(
	ctx context.Context, msg model.Message, cl model.Classification,
	sum model.Summary, draft model.Draft, round int,
) (approval.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return approval.Decision{}, s.Err
	}
	if s.Presented >= len(s.Decisions) {
		return approval.Decision{}, fmt.Errorf("unexpected prompt %d", s.Presented+1)
	}
	s.Classifications = append(s.Classifications, cl)
	s.Summaries = append(s.Summaries, sum)
	d := s.Decisions[s.Presented]
	s.Presented++
	return d, nil
}

func (s *ScriptedPrompter) ReviewFollowUp(
	ctx context.Context, fu model.FollowUp,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reviewed = append(s.Reviewed, fu.MessageID)
	return s.CompleteFollowUps, nil
}

// MemorySink collects activity records in memory.
type MemorySink struct {
	mu      sync.Mutex
	Err     error
	records []model.ActivityRecord
}

func (m *MemorySink) Append(ctx context.Context, rec model.ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.records = append(m.records, rec)
	return nil
}

// Records returns the appended records so far.
func (m *MemorySink) Records() []model.ActivityRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ActivityRecord(nil), m.records...)
}
