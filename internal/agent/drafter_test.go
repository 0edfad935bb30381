package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/agent"
	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/internal/retrieval"
	"github.com/nhle/inboxpilot/tests/testutil"
)

type fakeSearcher struct {
	results []model.RetrievalRecord
	err     error
	queries []string
}

func (f *fakeSearcher) Search(
	ctx context.Context, queryText string, k int,
) ([]model.RetrievalRecord, error) {
	f.queries = append(f.queries, queryText)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}

const draftJSON = `{
	"subject": "Re: Quarterly report",
	"body": "Hi Ada, the report will be with you by Friday.",
	"tone": "professional",
	"confidence": 0.85
}`

func TestDraftUsesRetrievedContext(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(draftJSON)
	searcher := &fakeSearcher{results: []model.RetrievalRecord{
		{ReplyBody: "Sure, I can send that over by end of week."},
	}}
	d := agent.NewDrafter(gen, searcher, 3, nil)
	msg := testutil.TestMessage("m1")

	draft, err := d.Draft(context.Background(), msg,
		model.Classification{Category: model.CategoryImportant, Priority: model.PriorityHigh},
		model.Summary{Summary: "Report requested.", Sentiment: model.SentimentNeutral})
	require.NoError(t, err)

	assert.Equal(t, "Re: Quarterly report", draft.Subject)
	assert.Equal(t, model.ToneProfessional, draft.Tone)
	require.Len(t, searcher.queries, 1)
	assert.Equal(t, msg.Body, searcher.queries[0])
}

func TestDraftDegradesWhenRetrievalFails(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(draftJSON)
	searcher := &fakeSearcher{
		err: &retrieval.RetrievalError{Op: "search", Err: errors.New("down")},
	}
	d := agent.NewDrafter(gen, searcher, 3, nil)

	draft, err := d.Draft(context.Background(), testutil.TestMessage("m1"),
		model.Classification{}, model.Summary{Sentiment: model.SentimentNeutral})
	require.NoError(t, err)
	assert.NotEmpty(t, draft.Body)
}

func TestDraftExcerptsStayValidUTF8(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(draftJSON)
	searcher := &fakeSearcher{results: []model.RetrievalRecord{
		{ReplyBody: strings.Repeat("ありがとう", 50)},
	}}
	d := agent.NewDrafter(gen, searcher, 3, nil)

	_, err := d.Draft(context.Background(), testutil.TestMessage("m1"),
		model.Classification{}, model.Summary{Sentiment: model.SentimentNeutral})
	require.NoError(t, err)

	require.Len(t, gen.Prompts, 1)
	assert.True(t, utf8.ValidString(gen.Prompts[0]))
}

func TestDraftRejectsUnknownTone(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(
		`{"subject": "Re: x", "body": "y", "tone": "sassy", "confidence": 0.5}`)
	d := agent.NewDrafter(gen, &fakeSearcher{}, 3, nil)

	_, err := d.Draft(context.Background(), testutil.TestMessage("m1"),
		model.Classification{}, model.Summary{})
	require.Error(t, err)
}

func TestRefineReplacesDraft(t *testing.T) {
	gen := (&testutil.FakeGenerator{}).Queue(`{
		"subject": "Re: Quarterly report",
		"body": "Hi Ada, attached is the report, a day early.",
		"tone": "friendly",
		"confidence": 0.9
	}`)
	d := agent.NewDrafter(gen, &fakeSearcher{}, 3, nil)

	refined, err := d.Refine(context.Background(),
		model.Draft{Subject: "Re: Quarterly report", Body: "old body"},
		"make it friendlier and attach the report",
		testutil.TestMessage("m1"))
	require.NoError(t, err)

	assert.Equal(t, model.ToneFriendly, refined.Tone)
	assert.NotEqual(t, "old body", refined.Body)
}
