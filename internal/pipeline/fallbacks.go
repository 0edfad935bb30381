package pipeline

import (
	"fmt"

	"github.com/nhle/inboxpilot/internal/model"
)

// FallbackClassification is the conservative verdict used when the
// classifier fails: a generic bucket that never auto-responds. The zero
// confidence keeps degraded output distinguishable downstream.
func FallbackClassification() model.Classification {
	return model.Classification{
		Category:    model.CategoryGeneral,
		Priority:    model.PriorityMedium,
		Confidence:  0,
		Reasoning:   "classification unavailable, using defaults",
		AutoRespond: false,
	}
}

// FallbackSummary builds a summary from the message snippet when the
// summarizer fails.
func FallbackSummary(msg model.Message) model.Summary {
	text := msg.Snippet
	if text == "" {
		text = "Summary unavailable."
	}
	return model.Summary{
		Summary:   text,
		Sentiment: model.SentimentNeutral,
	}
}

// FallbackDraft is the templated acknowledgment used when drafting
// fails for a message that still warrants a reply.
func FallbackDraft(msg model.Message, sum model.Summary) model.Draft {
	return model.Draft{
		Subject: "Re: " + msg.Subject,
		Body: fmt.Sprintf(
			"Thank you for your email regarding %q. I will review and get back to you shortly.",
			sum.Summary,
		),
		Tone:       model.ToneProfessional,
		Confidence: 0,
	}
}
