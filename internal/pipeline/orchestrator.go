// Package pipeline sequences the agents over a batch of unread
// messages: classify, summarize, draft, review, send, schedule, log.
// Agent failures degrade to fallbacks; only mailbox fetch failure and
// cancellation abort a run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/inboxpilot/internal/approval"
	"github.com/nhle/inboxpilot/internal/mailbox"
	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/internal/scheduler"
)

// Classifier buckets a message. Satisfied by *agent.Classifier.
type Classifier interface {
	Classify(ctx context.Context, msg model.Message) (model.Classification, error)
}

// Summarizer condenses a message. Satisfied by *agent.Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, msg model.Message, cl model.Classification) (model.Summary, error)
}

// Drafter writes candidate replies. Satisfied by *agent.Drafter.
type Drafter interface {
	Draft(ctx context.Context, msg model.Message, cl model.Classification, sum model.Summary) (model.Draft, error)
}

// Reviewer runs a draft through the approval gate. The classification
// and summary accompany the draft so the reviewer sees what led to it.
// Satisfied by *approval.Gate.
type Reviewer interface {
	Review(ctx context.Context, msg model.Message, cl model.Classification, sum model.Summary, draft model.Draft) (approval.Outcome, error)
}

// Indexer stores sent (message, reply) pairs for future retrieval.
// Satisfied by *retrieval.Index.
type Indexer interface {
	AddPair(ctx context.Context, messageBody, replyBody string) error
}

// FollowUps is the scheduler surface the pipeline uses. Satisfied by
// *scheduler.Scheduler.
type FollowUps interface {
	Schedule(ctx context.Context, messageID, subject, sender string, priority model.Priority, delayDays int) (model.FollowUp, error)
	DueItems(ctx context.Context, asOf time.Time) ([]model.FollowUp, error)
	Complete(ctx context.Context, messageID string) error
	Stats(ctx context.Context) (scheduler.Stats, error)
}

// ActivitySink accepts per-message activity records.
type ActivitySink interface {
	Append(ctx context.Context, rec model.ActivityRecord) error
}

// FollowUpReviewer decides whether a due follow-up is done. Interactive
// implementations ask the operator.
type FollowUpReviewer interface {
	ReviewFollowUp(ctx context.Context, fu model.FollowUp) (completed bool, err error)
}

// RunStats aggregates one processing run.
type RunStats struct {
	Processed int
	Sent      int
	Skipped   int
	Errors    int
}

// Config holds the pipeline policy knobs.
type Config struct {
	MaxMessagesPerRun int
	FollowUpDays      int
	CheckInterval     time.Duration
}

// Orchestrator wires the agents into the per-message pipeline.
type Orchestrator struct {
	mail       mailbox.Mailbox
	classifier Classifier
	summarizer Summarizer
	drafter    Drafter
	reviewer   Reviewer
	index      Indexer
	followUps  FollowUps
	sink       ActivitySink
	fuReviewer FollowUpReviewer
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an Orchestrator. index, sink, and fuReviewer may be nil,
// disabling retrieval storage, activity logging, and interactive
// follow-up review respectively.
func New(
	mail mailbox.Mailbox,
	classifier Classifier,
	summarizer Summarizer,
	drafter Drafter,
	reviewer Reviewer,
	index Indexer,
	followUps FollowUps,
	sink ActivitySink,
	fuReviewer FollowUpReviewer,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		mail:       mail,
		classifier: classifier,
		summarizer: summarizer,
		drafter:    drafter,
		reviewer:   reviewer,
		index:      index,
		followUps:  followUps,
		sink:       sink,
		fuReviewer: fuReviewer,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessMessages fetches unread messages and runs each through the
// pipeline. A fetch failure aborts the run; per-message failures are
// counted and the run continues.
func (o *Orchestrator) ProcessMessages(ctx context.Context) (RunStats, error) {
	var stats RunStats

	messages, err := o.mail.FetchUnread(ctx, o.cfg.MaxMessagesPerRun)
	if err != nil {
		return stats, fmt.Errorf("fetching unread messages: %w", err)
	}
	if len(messages) == 0 {
		o.logger.Info("no messages to process")
		return stats, nil
	}

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("processing interrupted: %w", err)
		}

		sent, err := o.processOne(ctx, msg)
		stats.Processed++
		switch {
		case err != nil:
			stats.Errors++
			o.logger.Error("message processing failed",
				"message_id", msg.ID, "error", err)
		case sent:
			stats.Sent++
		default:
			stats.Skipped++
		}
	}

	o.logger.Info("processing run finished",
		"processed", stats.Processed,
		"sent", stats.Sent,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
	)
	return stats, nil
}

// processOne runs a single message through the pipeline and reports
// whether a reply was sent.
func (o *Orchestrator) processOne(ctx context.Context, msg model.Message) (bool, error) {
	start := o.now()

	cl, err := o.classifier.Classify(ctx, msg)
	if err != nil {
		o.logger.Warn("classification failed, using fallback",
			"message_id", msg.ID, "error", err)
		cl = FallbackClassification()
	}

	sum, err := o.summarizer.Summarize(ctx, msg, cl)
	if err != nil {
		o.logger.Warn("summarization failed, using fallback",
			"message_id", msg.ID, "error", err)
		sum = FallbackSummary(msg)
	}

	sent := false
	var finalDraft model.Draft

	if cl.AutoRespond {
		draft, err := o.drafter.Draft(ctx, msg, cl, sum)
		if err != nil {
			o.logger.Warn("drafting failed, using fallback",
				"message_id", msg.ID, "error", err)
			draft = FallbackDraft(msg, sum)
		}

		// Every reply passes the gate; with approval disabled the gate
		// is wired with an auto-approving prompter.
		outcome, err := o.reviewer.Review(ctx, msg, cl, sum, draft)
		if err != nil {
			return false, fmt.Errorf("reviewing draft: %w", err)
		}

		if outcome.State == approval.StateApproved {
			finalDraft = outcome.Draft
			sent = o.sendReply(ctx, msg, outcome.Draft)
		}
	}

	// Past replies are only useful as retrieval context when a human
	// actually let them out the door.
	if sent && o.index != nil {
		if err := o.index.AddPair(ctx, msg.Body, finalDraft.Body); err != nil {
			o.logger.Warn("storing retrieval pair failed",
				"message_id", msg.ID, "error", err)
		}
	}

	var followUpDueAt *time.Time
	if cl.Priority == model.PriorityHigh || sum.Sentiment == model.SentimentUrgent {
		fu, err := o.followUps.Schedule(
			ctx, msg.ID, msg.Subject, msg.Sender, cl.Priority, o.cfg.FollowUpDays,
		)
		if err != nil {
			o.logger.Warn("scheduling follow-up failed",
				"message_id", msg.ID, "error", err)
		} else {
			followUpDueAt = &fu.DueAt
		}
	}

	if o.sink != nil {
		rec := model.ActivityRecord{
			Timestamp:           o.now(),
			MessageID:           msg.ID,
			Sender:              msg.Sender,
			Subject:             msg.Subject,
			Category:            cl.Category,
			Priority:            cl.Priority,
			Summary:             sum.Summary,
			Sent:                sent,
			ReplyLatencySeconds: o.now().Sub(start).Seconds(),
			FollowUpDueAt:       followUpDueAt,
		}
		if err := o.sink.Append(ctx, rec); err != nil {
			o.logger.Warn("activity log append failed",
				"message_id", msg.ID, "error", err)
		}
	}

	if err := o.mail.MarkRead(ctx, msg.ID); err != nil {
		o.logger.Warn("marking message read failed",
			"message_id", msg.ID, "error", err)
	}

	return sent, nil
}

// sendReply delivers an approved draft. A send failure is logged and
// reported as not-sent rather than failing the message.
func (o *Orchestrator) sendReply(ctx context.Context, msg model.Message, draft model.Draft) bool {
	receipt, err := o.mail.Send(ctx, mailbox.SendRequest{
		ThreadID: msg.ThreadID,
		To:       msg.Sender,
		Subject:  draft.Subject,
		Body:     draft.Body,
	})
	if err != nil {
		o.logger.Error("sending reply failed",
			"message_id", msg.ID, "error", err)
		return false
	}

	o.logger.Info("reply sent",
		"message_id", msg.ID,
		"receipt_id", receipt.ID,
	)
	return true
}

// CheckFollowUps lists due follow-ups and, when a follow-up reviewer is
// configured, lets it mark items completed.
func (o *Orchestrator) CheckFollowUps(ctx context.Context) error {
	due, err := o.followUps.DueItems(ctx, o.now())
	if err != nil {
		return fmt.Errorf("listing due follow-ups: %w", err)
	}
	if len(due) == 0 {
		o.logger.Info("no due follow-ups")
		return nil
	}

	o.logger.Info("follow-ups due", "count", len(due))

	if o.fuReviewer == nil {
		return nil
	}
	for _, fu := range due {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("follow-up review interrupted: %w", err)
		}

		done, err := o.fuReviewer.ReviewFollowUp(ctx, fu)
		if err != nil {
			return fmt.Errorf("reviewing follow-up %s: %w", fu.MessageID, err)
		}
		if done {
			if err := o.followUps.Complete(ctx, fu.MessageID); err != nil {
				return fmt.Errorf("completing follow-up %s: %w", fu.MessageID, err)
			}
		}
	}
	return nil
}
