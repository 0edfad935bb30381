package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nhle/inboxpilot/internal/llm"
	"github.com/nhle/inboxpilot/internal/model"
)

const summarizerSystemPrompt = `You are an expert email summarization assistant.
Create concise, actionable summaries that capture key information and required actions.`

// Summarizer condenses a message into a summary with key points,
// action items, and a sentiment read.
type Summarizer struct {
	gen    Generator
	logger *slog.Logger
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(gen Generator, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Summarizer{gen: gen, logger: logger}
}

// Summarize produces a summary of msg, informed by its classification.
func (s *Summarizer) Summarize(
	ctx context.Context, msg model.Message, cl model.Classification,
) (model.Summary, error) {
	prompt := fmt.Sprintf(`Summarize the following email concisely:

From: %s
Subject: %s
Body: %s

Category: %s
Priority: %s

Provide a summary in the following JSON format:
{
    "summary": "2-3 sentence summary",
    "key_points": ["point 1", "point 2", "point 3"],
    "action_items": ["action 1", "action 2"],
    "sentiment": "one of: positive, neutral, negative, urgent"
}

Focus on:
- Main purpose of the email
- Important details or requests
- Any deadlines or time constraints
- Action items or required responses

If the email is both negative and urgent, report the sentiment as "urgent".`,
		msg.Sender, msg.Subject, msg.Body, cl.Category, cl.Priority)

	var result model.Summary
	if err := s.gen.CompleteJSON(ctx, summarizerSystemPrompt, prompt, &result); err != nil {
		return model.Summary{}, fmt.Errorf("summarizing message %s: %w", msg.ID, err)
	}

	if !result.Sentiment.Valid() {
		return model.Summary{}, &llm.GenerationError{
			Op:  "summarize",
			Err: fmt.Errorf("unknown sentiment %q", result.Sentiment),
		}
	}

	s.logger.Info("message summarized",
		"message_id", msg.ID,
		"sentiment", result.Sentiment,
		"action_items", len(result.ActionItems),
	)
	return result, nil
}
