// Package approval implements the human review gate a drafted reply
// must pass before it can be sent. Every draft moves through an
// explicit state machine; no reply leaves the pipeline without a
// terminal Approved state.
package approval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nhle/inboxpilot/internal/model"
)

// State is the review state of a draft.
type State string

const (
	// StateDrafted means a draft exists and awaits a decision.
	StateDrafted State = "drafted"

	// StateRefining means feedback was given and a rewrite is in flight.
	StateRefining State = "refining"

	// StateApproved is terminal: the draft may be sent.
	StateApproved State = "approved"

	// StateSkipped is terminal: the draft is discarded unsent.
	StateSkipped State = "skipped"
)

// Terminal reports whether s accepts no further transitions.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateSkipped
}

// Action is the kind of decision a reviewer can make.
type Action string

const (
	ActionApprove Action = "approve"
	ActionSkip    Action = "skip"
	ActionRefine  Action = "refine"
)

// Decision is a single reviewer choice. Feedback is set only for
// ActionRefine.
type Decision struct {
	Action   Action
	Feedback string
}

// Prompter presents a message with its classification, summary, and
// drafted reply to the human reviewer and collects a decision. round is
// 1-based.
type Prompter interface {
	Present(ctx context.Context, msg model.Message, cl model.Classification, sum model.Summary, draft model.Draft, round int) (Decision, error)
}

// Refiner rewrites a draft according to reviewer feedback. Satisfied by
// *agent.Drafter.
type Refiner interface {
	Refine(ctx context.Context, draft model.Draft, feedback string, msg model.Message) (model.Draft, error)
}

// Outcome is the result of a completed review.
type Outcome struct {
	// State is the terminal state, Approved or Skipped.
	State State

	// Draft is the final draft as last shown to the reviewer.
	Draft model.Draft

	// Rounds is how many refinement rounds ran.
	Rounds int
}

// AutoApprove is a Prompter that approves every draft without human
// input. Used when interactive approval is disabled, so every sent
// reply still passes through the gate.
type AutoApprove struct{}

func (AutoApprove) Present(
	ctx context.Context, msg model.Message, cl model.Classification,
	sum model.Summary, draft model.Draft, round int,
) (Decision, error) {
	return Decision{Action: ActionApprove}, nil
}

// Session tracks one draft through the review state machine. Decisions
// applied after a terminal state are no-ops.
type Session struct {
	msg       model.Message
	draft     model.Draft
	state     State
	rounds    int
	maxRounds int
	refiner   Refiner
	logger    *slog.Logger
}

// NewSession starts a review for draft with at most maxRounds
// refinement rounds.
func NewSession(
	msg model.Message,
	draft model.Draft,
	refiner Refiner,
	maxRounds int,
	logger *slog.Logger,
) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		msg:       msg,
		draft:     draft,
		state:     StateDrafted,
		maxRounds: maxRounds,
		refiner:   refiner,
		logger:    logger,
	}
}

// State returns the current review state.
func (s *Session) State() State { return s.state }

// Draft returns the draft in its current revision.
func (s *Session) Draft() model.Draft { return s.draft }

// Rounds returns how many refinement rounds have completed.
func (s *Session) Rounds() int { return s.rounds }

// Apply feeds one decision into the state machine. A refine decision
// past the round bound is coerced to skip so a review always
// terminates. A failed rewrite keeps the session in Drafted with the
// prior draft intact.
func (s *Session) Apply(ctx context.Context, d Decision) error {
	if s.state.Terminal() {
		return nil
	}

	switch d.Action {
	case ActionApprove:
		s.state = StateApproved
		return nil

	case ActionSkip:
		s.state = StateSkipped
		return nil

	case ActionRefine:
		if s.rounds >= s.maxRounds {
			s.logger.Warn("refine limit reached, skipping draft",
				"message_id", s.msg.ID, "rounds", s.rounds)
			s.state = StateSkipped
			return nil
		}

		s.state = StateRefining
		refined, err := s.refiner.Refine(ctx, s.draft, d.Feedback, s.msg)
		s.state = StateDrafted
		if err != nil {
			s.logger.Warn("refinement failed, keeping prior draft",
				"message_id", s.msg.ID, "error", err)
			return nil
		}

		s.draft = refined
		s.rounds++
		return nil

	default:
		return fmt.Errorf("unknown review action %q", d.Action)
	}
}

// Gate runs review sessions against a Prompter until they terminate.
type Gate struct {
	prompter  Prompter
	refiner   Refiner
	maxRounds int
	logger    *slog.Logger
}

// NewGate creates a Gate. maxRounds bounds refinement per review.
func NewGate(prompter Prompter, refiner Refiner, maxRounds int, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{
		prompter:  prompter,
		refiner:   refiner,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Review presents draft for msg to the reviewer, along with the
// classification and summary that led to it, looping through refinement
// rounds until the session reaches a terminal state. A prompter error
// aborts the review.
func (g *Gate) Review(
	ctx context.Context,
	msg model.Message,
	cl model.Classification,
	sum model.Summary,
	draft model.Draft,
) (Outcome, error) {
	session := NewSession(msg, draft, g.refiner, g.maxRounds, g.logger)

	for !session.State().Terminal() {
		if err := ctx.Err(); err != nil {
			return Outcome{}, fmt.Errorf("review interrupted: %w", err)
		}

		decision, err := g.prompter.Present(ctx, msg, cl, sum, session.Draft(), session.Rounds()+1)
		if err != nil {
			return Outcome{}, fmt.Errorf("collecting review decision: %w", err)
		}
		if err := session.Apply(ctx, decision); err != nil {
			return Outcome{}, err
		}
	}

	g.logger.Info("review finished",
		"message_id", msg.ID,
		"state", session.State(),
		"rounds", session.Rounds(),
	)
	return Outcome{
		State:  session.State(),
		Draft:  session.Draft(),
		Rounds: session.Rounds(),
	}, nil
}
