// Package agent holds the three prompting agents of the pipeline:
// the classifier, the summarizer, and the reply drafter. Each agent
// owns its prompt and validates the structured output it gets back.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/nhle/inboxpilot/internal/llm"
	"github.com/nhle/inboxpilot/internal/model"
)

// Generator produces structured completions. Satisfied by *llm.Client.
type Generator interface {
	CompleteJSON(ctx context.Context, system, prompt string, out any) error
}

// classifyBodyLimit caps how much of the body the classifier sees. The
// opening of a message is enough to bucket it.
const classifyBodyLimit = 500

const classifierSystemPrompt = `You are an expert email classification assistant.
Your task is to analyze emails and categorize them accurately.`

// Classifier buckets inbound messages by category and priority.
type Classifier struct {
	gen       Generator
	threshold float64
	logger    *slog.Logger
}

// NewClassifier creates a Classifier. threshold is the minimum
// confidence for the auto-response gate to pass.
func NewClassifier(gen Generator, threshold float64, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{gen: gen, threshold: threshold, logger: logger}
}

// Classify analyzes msg and returns its classification with the
// auto-response decision already applied. Enum values outside the known
// sets are rejected rather than passed downstream.
func (c *Classifier) Classify(
	ctx context.Context, msg model.Message,
) (model.Classification, error) {
	body := truncate(msg.Body, classifyBodyLimit)

	prompt := fmt.Sprintf(`Analyze the following email and classify it:

From: %s
Subject: %s
Body: %s

Provide classification in the following JSON format:
{
    "category": "one of: urgent, important, promotional, newsletter, spam, general",
    "priority": "one of: high, medium, low",
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation"
}

Categories:
- urgent: Time-sensitive, requires immediate action
- important: From key contacts, business-critical
- promotional: Marketing, advertisements, offers
- newsletter: Subscriptions, updates, digests
- spam: Unwanted, suspicious
- general: Everything else

Priority:
- high: Action needed within 24h
- medium: Action needed within a week
- low: FYI, no action required`,
		msg.Sender, msg.Subject, body)

	var result model.Classification
	if err := c.gen.CompleteJSON(ctx, classifierSystemPrompt, prompt, &result); err != nil {
		return model.Classification{}, fmt.Errorf("classifying message %s: %w", msg.ID, err)
	}

	if !result.Category.Valid() {
		return model.Classification{}, &llm.GenerationError{
			Op:  "classify",
			Err: fmt.Errorf("unknown category %q", result.Category),
		}
	}
	if !result.Priority.Valid() {
		return model.Classification{}, &llm.GenerationError{
			Op:  "classify",
			Err: fmt.Errorf("unknown priority %q", result.Priority),
		}
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return model.Classification{}, &llm.GenerationError{
			Op:  "classify",
			Err: fmt.Errorf("confidence %v out of range", result.Confidence),
		}
	}

	result.AutoRespond = c.ShouldAutoRespond(result)

	c.logger.Info("message classified",
		"message_id", msg.ID,
		"category", result.Category,
		"priority", result.Priority,
		"confidence", result.Confidence,
	)
	return result, nil
}

// ShouldAutoRespond reports whether cl qualifies for an automatic
// reply. Spam, promotional, and newsletter messages never do; the rest
// qualify only when confidence reaches the configured threshold.
func (c *Classifier) ShouldAutoRespond(cl model.Classification) bool {
	switch cl.Category {
	case model.CategorySpam, model.CategoryPromotional, model.CategoryNewsletter:
		return false
	}
	return cl.Confidence >= c.threshold
}

// PriorityScore returns the sort weight of a classification: the
// priority score scaled by confidence, so a confident medium can
// outrank a shaky high.
func PriorityScore(cl model.Classification) float64 {
	return cl.Priority.Score() * cl.Confidence
}

// truncate cuts s to at most limit bytes without splitting a rune,
// marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
