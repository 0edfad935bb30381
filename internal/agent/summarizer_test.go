package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/agent"
	"github.com/nhle/inboxpilot/internal/llm"
	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/tests/testutil"
)

func TestSummarizeParsesStructuredOutput(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(`{
		"summary": "Ada asks for the quarterly report by Friday.",
		"key_points": ["quarterly report", "deadline Friday"],
		"action_items": ["send report"],
		"sentiment": "neutral"
	}`)
	s := agent.NewSummarizer(gen, nil)

	sum, err := s.Summarize(context.Background(), testutil.TestMessage("m1"),
		model.Classification{Category: model.CategoryImportant, Priority: model.PriorityHigh})
	require.NoError(t, err)

	assert.Equal(t, "Ada asks for the quarterly report by Friday.", sum.Summary)
	assert.Len(t, sum.KeyPoints, 2)
	assert.Equal(t, []string{"send report"}, sum.ActionItems)
	assert.Equal(t, model.SentimentNeutral, sum.Sentiment)
}

func TestSummarizeRejectsUnknownSentiment(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(
		`{"summary": "x", "sentiment": "grumpy"}`)
	s := agent.NewSummarizer(gen, nil)

	_, err := s.Summarize(context.Background(), testutil.TestMessage("m1"),
		model.Classification{})
	require.Error(t, err)
	assert.True(t, llm.IsGenerationError(err))
}
