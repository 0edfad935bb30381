package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/nhle/inboxpilot/internal/llm"
	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/internal/retrieval"
)

// Searcher answers nearest-neighbor queries over past (message, reply)
// pairs. Satisfied by *retrieval.Index.
type Searcher interface {
	Search(ctx context.Context, queryText string, k int) ([]model.RetrievalRecord, error)
}

const drafterSystemPrompt = `You are a professional email response assistant.
Draft polite, concise, and contextually appropriate email replies.
Match the tone of the incoming email and maintain professionalism.`

// ragExcerptLimit caps each past-reply excerpt in the drafting prompt.
// Excerpts are illustrative, not templates to copy.
const ragExcerptLimit = 200

// Drafter writes candidate replies, grounded on similar past replies
// pulled from the retrieval index.
type Drafter struct {
	gen      Generator
	searcher Searcher
	k        int
	logger   *slog.Logger
}

// NewDrafter creates a Drafter that retrieves up to k past replies per
// draft.
func NewDrafter(gen Generator, searcher Searcher, k int, logger *slog.Logger) *Drafter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Drafter{gen: gen, searcher: searcher, k: k, logger: logger}
}

// Draft writes a reply to msg. Retrieval failure degrades to drafting
// without past-reply context; it never fails the draft.
func (d *Drafter) Draft(
	ctx context.Context,
	msg model.Message,
	cl model.Classification,
	sum model.Summary,
) (model.Draft, error) {
	ragContext := ""
	if d.searcher != nil {
		similar, err := d.searcher.Search(ctx, msg.Body, d.k)
		switch {
		case retrieval.IsRetrievalError(err):
			d.logger.Warn("retrieval unavailable, drafting without context",
				"message_id", msg.ID, "error", err)
		case err != nil:
			return model.Draft{}, fmt.Errorf("searching past replies: %w", err)
		default:
			ragContext = formatRAGContext(similar)
		}
	}

	name := senderName(msg.Sender)
	salutation := name
	if salutation == "" {
		salutation = "there"
	}

	prompt := fmt.Sprintf(`Draft a professional email reply based on the following:

INCOMING EMAIL:
From: %s
Subject: %s
Body: %s

CLASSIFICATION:
Category: %s
Priority: %s

SUMMARY:
%s

Key Points: %s
Action Items: %s
Sentiment: %s

%s

Generate a reply in the following JSON format:
{
    "subject": "Re: original subject",
    "body": "professionally formatted email body",
    "tone": "one of: formal, professional, casual, friendly",
    "confidence": 0.0-1.0
}

Guidelines:
- Address the sender by name if available: %s
- Be concise and clear
- Address all key points and action items
- Match the tone of the incoming email
- Include a clear call-to-action if needed
- Sign off appropriately
- If you need more information, ask clarifying questions politely`,
		msg.Sender, msg.Subject, msg.Body,
		cl.Category, cl.Priority,
		sum.Summary,
		strings.Join(sum.KeyPoints, ", "),
		strings.Join(sum.ActionItems, ", "),
		sum.Sentiment,
		ragContext,
		salutation)

	var result model.Draft
	if err := d.gen.CompleteJSON(ctx, drafterSystemPrompt, prompt, &result); err != nil {
		return model.Draft{}, fmt.Errorf("drafting reply to %s: %w", msg.ID, err)
	}
	if !result.Tone.Valid() {
		return model.Draft{}, &llm.GenerationError{
			Op:  "draft",
			Err: fmt.Errorf("unknown tone %q", result.Tone),
		}
	}

	d.logger.Info("reply drafted",
		"message_id", msg.ID,
		"tone", result.Tone,
		"confidence", result.Confidence,
	)
	return result, nil
}

// Refine rewrites draft according to the reviewer's feedback.
func (d *Drafter) Refine(
	ctx context.Context,
	draft model.Draft,
	feedback string,
	msg model.Message,
) (model.Draft, error) {
	prompt := fmt.Sprintf(`Refine the following email reply based on user feedback:

ORIGINAL DRAFT:
%s

USER FEEDBACK:
%s

ORIGINAL EMAIL CONTEXT:
From: %s
Subject: %s

Generate an improved reply in the following JSON format:
{
    "subject": "Re: original subject",
    "body": "improved email body",
    "tone": "one of: formal, professional, casual, friendly",
    "confidence": 0.0-1.0
}`,
		draft.Body, feedback, msg.Sender, msg.Subject)

	var result model.Draft
	if err := d.gen.CompleteJSON(ctx, drafterSystemPrompt, prompt, &result); err != nil {
		return model.Draft{}, fmt.Errorf("refining reply to %s: %w", msg.ID, err)
	}
	if !result.Tone.Valid() {
		return model.Draft{}, &llm.GenerationError{
			Op:  "refine",
			Err: fmt.Errorf("unknown tone %q", result.Tone),
		}
	}

	d.logger.Info("reply refined", "message_id", msg.ID)
	return result, nil
}

// formatRAGContext renders past replies as numbered excerpts for the
// drafting prompt.
func formatRAGContext(records []model.RetrievalRecord) string {
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("SIMILAR PAST RESPONSES (for reference):\n")
	for i, rec := range records {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, truncate(rec.ReplyBody, ragExcerptLimit))
	}
	return b.String()
}

// senderName extracts a first name from a From header for the
// salutation. An unparseable or bare-address header yields "".
func senderName(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil || addr.Name == "" {
		return ""
	}
	fields := strings.Fields(addr.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
