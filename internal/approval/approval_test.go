package approval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/approval"
	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/tests/testutil"
)

type fakeRefiner struct {
	next  model.Draft
	err   error
	calls int
}

func (f *fakeRefiner) Refine(
	ctx context.Context, draft model.Draft, feedback string, msg model.Message,
) (model.Draft, error) {
	f.calls++
	if f.err != nil {
		return model.Draft{}, f.err
	}
	return f.next, nil
}

func testDraft() model.Draft {
	return model.Draft{
		Subject:    "Re: Quarterly report",
		Body:       "Hi Ada, you'll have it Friday.",
		Tone:       model.ToneProfessional,
		Confidence: 0.8,
	}
}

func testClassification() model.Classification {
	return model.Classification{
		Category:    model.CategoryImportant,
		Priority:    model.PriorityHigh,
		Confidence:  0.9,
		AutoRespond: true,
	}
}

func testSummary() model.Summary {
	return model.Summary{
		Summary:   "Ada needs the quarterly report by Friday.",
		Sentiment: model.SentimentNeutral,
	}
}

func TestReviewApprove(t *testing.T) {
	prompter := &testutil.ScriptedPrompter{
		Decisions: []approval.Decision{{Action: approval.ActionApprove}},
	}
	gate := approval.NewGate(prompter, &fakeRefiner{}, 3, nil)

	outcome, err := gate.Review(context.Background(), testutil.TestMessage("m1"),
		testClassification(), testSummary(), testDraft())
	require.NoError(t, err)

	assert.Equal(t, approval.StateApproved, outcome.State)
	assert.Equal(t, testDraft(), outcome.Draft)
	assert.Zero(t, outcome.Rounds)

	// The reviewer is shown the classification and summary, not just
	// the draft.
	require.Len(t, prompter.Classifications, 1)
	assert.Equal(t, testClassification(), prompter.Classifications[0])
	require.Len(t, prompter.Summaries, 1)
	assert.Equal(t, testSummary(), prompter.Summaries[0])
}

func TestReviewSkip(t *testing.T) {
	prompter := &testutil.ScriptedPrompter{
		Decisions: []approval.Decision{{Action: approval.ActionSkip}},
	}
	gate := approval.NewGate(prompter, &fakeRefiner{}, 3, nil)

	outcome, err := gate.Review(context.Background(), testutil.TestMessage("m1"),
		testClassification(), testSummary(), testDraft())
	require.NoError(t, err)
	assert.Equal(t, approval.StateSkipped, outcome.State)
}

func TestReviewRefineThenApprove(t *testing.T) {
	refined := testDraft()
	refined.Body = "Hi Ada, the report is attached."
	refiner := &fakeRefiner{next: refined}

	prompter := &testutil.ScriptedPrompter{
		Decisions: []approval.Decision{
			{Action: approval.ActionRefine, Feedback: "attach it"},
			{Action: approval.ActionApprove},
		},
	}
	gate := approval.NewGate(prompter, refiner, 3, nil)

	outcome, err := gate.Review(context.Background(), testutil.TestMessage("m1"),
		testClassification(), testSummary(), testDraft())
	require.NoError(t, err)

	assert.Equal(t, approval.StateApproved, outcome.State)
	assert.Equal(t, refined, outcome.Draft)
	assert.Equal(t, 1, outcome.Rounds)
	assert.Equal(t, 1, refiner.calls)
}

func TestReviewRefinePastBoundSkips(t *testing.T) {
	refiner := &fakeRefiner{next: testDraft()}
	prompter := &testutil.ScriptedPrompter{
		Decisions: []approval.Decision{
			{Action: approval.ActionRefine, Feedback: "a"},
			{Action: approval.ActionRefine, Feedback: "b"},
			{Action: approval.ActionRefine, Feedback: "c"},
		},
	}
	gate := approval.NewGate(prompter, refiner, 2, nil)

	outcome, err := gate.Review(context.Background(), testutil.TestMessage("m1"),
		testClassification(), testSummary(), testDraft())
	require.NoError(t, err)

	assert.Equal(t, approval.StateSkipped, outcome.State)
	assert.Equal(t, 2, outcome.Rounds)
	assert.Equal(t, 2, refiner.calls)
}

func TestReviewFailedRefineKeepsPriorDraft(t *testing.T) {
	refiner := &fakeRefiner{err: errors.New("generation down")}
	prompter := &testutil.ScriptedPrompter{
		Decisions: []approval.Decision{
			{Action: approval.ActionRefine, Feedback: "try again"},
			{Action: approval.ActionApprove},
		},
	}
	gate := approval.NewGate(prompter, refiner, 3, nil)

	outcome, err := gate.Review(context.Background(), testutil.TestMessage("m1"),
		testClassification(), testSummary(), testDraft())
	require.NoError(t, err)

	assert.Equal(t, approval.StateApproved, outcome.State)
	assert.Equal(t, testDraft(), outcome.Draft)
	assert.Zero(t, outcome.Rounds)
}

func TestReviewPrompterErrorAborts(t *testing.T) {
	prompter := &testutil.ScriptedPrompter{Err: errors.New("terminal closed")}
	gate := approval.NewGate(prompter, &fakeRefiner{}, 3, nil)

	_, err := gate.Review(context.Background(), testutil.TestMessage("m1"),
		testClassification(), testSummary(), testDraft())
	require.Error(t, err)
}

func TestSessionTerminalStatesIgnoreFurtherDecisions(t *testing.T) {
	session := approval.NewSession(
		testutil.TestMessage("m1"), testDraft(), &fakeRefiner{}, 3, nil)

	require.NoError(t, session.Apply(context.Background(),
		approval.Decision{Action: approval.ActionApprove}))
	require.Equal(t, approval.StateApproved, session.State())

	require.NoError(t, session.Apply(context.Background(),
		approval.Decision{Action: approval.ActionSkip}))
	assert.Equal(t, approval.StateApproved, session.State())
}

func TestSessionRejectsUnknownAction(t *testing.T) {
	session := approval.NewSession(
		testutil.TestMessage("m1"), testDraft(), &fakeRefiner{}, 3, nil)

	err := session.Apply(context.Background(), approval.Decision{Action: "mangle"})
	require.Error(t, err)
	assert.Equal(t, approval.StateDrafted, session.State())
}
