package agent_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/agent"
	"github.com/nhle/inboxpilot/internal/llm"
	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/tests/testutil"
)

func TestClassifySetsAutoRespond(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(
		`{"category": "important", "priority": "high", "confidence": 0.9, "reasoning": "deadline request"}`)
	c := agent.NewClassifier(gen, 0.7, nil)

	cl, err := c.Classify(context.Background(), testutil.TestMessage("m1"))
	require.NoError(t, err)

	assert.Equal(t, model.CategoryImportant, cl.Category)
	assert.Equal(t, model.PriorityHigh, cl.Priority)
	assert.True(t, cl.AutoRespond)
}

func TestClassifyRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad category", `{"category": "mystery", "priority": "high", "confidence": 0.9}`},
		{"bad priority", `{"category": "urgent", "priority": "extreme", "confidence": 0.9}`},
		{"confidence out of range", `{"category": "urgent", "priority": "high", "confidence": 1.5}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := (&testutil.FakeGenerator{}).Queue(tc.json)
			c := agent.NewClassifier(gen, 0.7, nil)

			_, err := c.Classify(context.Background(), testutil.TestMessage("m1"))
			require.Error(t, err)
			assert.True(t, llm.IsGenerationError(err))
		})
	}
}

func TestClassifyTruncatesBodyOnRuneBoundary(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(
		`{"category": "general", "priority": "low", "confidence": 0.9, "reasoning": "ok"}`)
	c := agent.NewClassifier(gen, 0.7, nil)

	msg := testutil.TestMessage("m1")
	msg.Body = strings.Repeat("ありがとう", 100)

	_, err := c.Classify(context.Background(), msg)
	require.NoError(t, err)

	require.Len(t, gen.Prompts, 1)
	assert.True(t, utf8.ValidString(gen.Prompts[0]))
	assert.Contains(t, gen.Prompts[0], "...")
}

func TestShouldAutoRespondPolicy(t *testing.T) {
	c := agent.NewClassifier(&testutil.FakeGenerator{}, 0.7, nil)

	tests := []struct {
		name       string
		category   model.Category
		confidence float64
		want       bool
	}{
		{"confident urgent", model.CategoryUrgent, 0.9, true},
		{"confident important", model.CategoryImportant, 0.8, true},
		{"confident general", model.CategoryGeneral, 0.7, true},
		{"low confidence urgent", model.CategoryUrgent, 0.5, false},
		{"confident spam", model.CategorySpam, 0.99, false},
		{"confident promotional", model.CategoryPromotional, 0.99, false},
		{"confident newsletter", model.CategoryNewsletter, 0.99, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.ShouldAutoRespond(model.Classification{
				Category:   tc.category,
				Confidence: tc.confidence,
			})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPriorityScoreScalesByConfidence(t *testing.T) {
	high := agent.PriorityScore(model.Classification{
		Priority: model.PriorityHigh, Confidence: 0.5,
	})
	medium := agent.PriorityScore(model.Classification{
		Priority: model.PriorityMedium, Confidence: 1.0,
	})

	assert.InDelta(t, 1.5, high, 1e-9)
	assert.InDelta(t, 2.0, medium, 1e-9)
	// A confident medium outranks a shaky high.
	assert.Greater(t, medium, high)
}
