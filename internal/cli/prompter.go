package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/nhle/inboxpilot/internal/approval"
	"github.com/nhle/inboxpilot/internal/model"
)

// interactivePrompter collects review decisions from the terminal. It
// implements approval.Prompter and pipeline.FollowUpReviewer.
type interactivePrompter struct{}

// Present shows the message with its classification and summary on the
// first round, then the draft, and asks for approve, refine, or skip.
func (p *interactivePrompter) Present(
	ctx context.Context, msg model.Message, cl model.Classification,
	sum model.Summary, draft model.Draft, round int,
) (approval.Decision, error) {
	if round == 1 {
		fmt.Println(renderMessagePreview(msg, cl, sum))
	}
	fmt.Println(renderDraftPreview(msg, draft, round))

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Review draft").
				Options(
					huh.NewOption("Approve and send", "approve"),
					huh.NewOption("Refine with feedback", "refine"),
					huh.NewOption("Skip", "skip"),
				).
				Value(&choice),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return approval.Decision{}, fmt.Errorf("reading review choice: %w", err)
	}

	switch choice {
	case "approve":
		return approval.Decision{Action: approval.ActionApprove}, nil
	case "skip":
		return approval.Decision{Action: approval.ActionSkip}, nil
	}

	var feedback string
	feedbackForm := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Feedback").
				Description("What should change in the reply?").
				Value(&feedback),
		),
	)
	if err := feedbackForm.RunWithContext(ctx); err != nil {
		return approval.Decision{}, fmt.Errorf("reading refine feedback: %w", err)
	}

	return approval.Decision{Action: approval.ActionRefine, Feedback: feedback}, nil
}

// ReviewFollowUp shows a due follow-up and asks whether it is done.
func (p *interactivePrompter) ReviewFollowUp(
	ctx context.Context, fu model.FollowUp,
) (bool, error) {
	fmt.Println(renderFollowUp(fu))

	var done bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Mark as completed?").
				Value(&done),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("reading follow-up choice: %w", err)
	}
	return done, nil
}
