package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nhle/inboxpilot/internal/activity"
	"github.com/nhle/inboxpilot/internal/agent"
	"github.com/nhle/inboxpilot/internal/approval"
	"github.com/nhle/inboxpilot/internal/credential"
	"github.com/nhle/inboxpilot/internal/embedding"
	"github.com/nhle/inboxpilot/internal/llm"
	"github.com/nhle/inboxpilot/internal/mailbox"
	"github.com/nhle/inboxpilot/internal/mailbox/gmail"
	"github.com/nhle/inboxpilot/internal/mailbox/imapsmtp"
	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/internal/pipeline"
	"github.com/nhle/inboxpilot/internal/retrieval"
	"github.com/nhle/inboxpilot/internal/scheduler"
	"github.com/nhle/inboxpilot/internal/store"
)

// app holds the wired components behind the CLI commands.
type app struct {
	cfg       *model.AppConfig
	store     *store.SQLiteStore
	scheduler *scheduler.Scheduler
	orch      *pipeline.Orchestrator
	logger    *slog.Logger
}

func (a *app) Close() error {
	return a.store.Close()
}

// newLogger builds the CLI logger. Verbose enables debug records.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the configured database. Persistence is fail-open:
// when the database cannot be opened the run proceeds on an in-memory
// store so mail processing still works, minus durable follow-ups.
func openStore(dbPath string, logger *slog.Logger) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(dbPath)
	if err == nil {
		return st, nil
	}

	logger.Warn("persistent store unavailable, falling back to in-memory",
		"db_path", dbPath, "error", err)
	return store.NewSQLiteStore(":memory:")
}

// secret reads key from the keyring, falling back to the environment
// variable envVar.
func secret(key, envVar string) string {
	if v, err := credential.Get(key); err == nil && v != "" {
		return v
	}
	return os.Getenv(envVar)
}

// buildMailbox constructs the configured mail backend.
func buildMailbox(ctx context.Context, cfg model.MailboxConfig) (mailbox.Mailbox, error) {
	switch cfg.Provider {
	case "gmail":
		return gmail.New(ctx, gmail.Config{
			CredentialsPath: cfg.GmailCredentialsPath,
			TokenPath:       cfg.GmailTokenPath,
		})
	case "imap", "":
		password := secret(credential.KeyMailboxPassword, "INBOXPILOT_MAILBOX_PASSWORD")
		return imapsmtp.New(imapsmtp.Config{
			IMAPHost: cfg.IMAPHost,
			IMAPPort: cfg.IMAPPort,
			SMTPHost: cfg.SMTPHost,
			SMTPPort: cfg.SMTPPort,
			Username: cfg.Username,
			Password: password,
			TLS:      cfg.TLS,
		}), nil
	default:
		return nil, fmt.Errorf("unknown mailbox provider %q", cfg.Provider)
	}
}

// buildApp wires the full pipeline from configuration.
func buildApp(ctx context.Context, cfgPath string, verbose bool) (*app, error) {
	logger := newLogger(verbose)

	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg.Storage.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	mail, err := buildMailbox(ctx, cfg.Mailbox)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("building mailbox: %w", err)
	}

	gen := llm.New(llm.Config{
		APIKey:      secret(credential.KeyAnthropicAPIKey, "ANTHROPIC_API_KEY"),
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Logger:      logger,
	})

	embedder := embedding.New(embedding.Config{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  secret(credential.KeyEmbeddingAPIKey, "INBOXPILOT_EMBEDDING_API_KEY"),
		Model:   cfg.Embedding.Model,
	})

	index := retrieval.NewIndex(embedder, st, logger)
	sched := scheduler.New(st, logger)

	classifier := agent.NewClassifier(gen, cfg.Pipeline.HighPriorityThreshold, logger)
	summarizer := agent.NewSummarizer(gen, logger)
	drafter := agent.NewDrafter(gen, index, cfg.Pipeline.RetrievalK, logger)

	prompter := &interactivePrompter{}
	var reviewPrompter approval.Prompter = prompter
	if !cfg.Pipeline.ApprovalRequired {
		reviewPrompter = approval.AutoApprove{}
	}
	gate := approval.NewGate(reviewPrompter, drafter, cfg.Pipeline.MaxRefineRounds, logger)

	sink, err := activity.NewFileSink(cfg.Storage.ActivityLogPath)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("opening activity log: %w", err)
	}

	orch := pipeline.New(
		mail, classifier, summarizer, drafter, gate,
		index, sched, sink, prompter,
		pipeline.Config{
			MaxMessagesPerRun: cfg.Pipeline.MaxMessagesPerRun,
			FollowUpDays:      cfg.Pipeline.FollowUpDays,
			CheckInterval:     time.Duration(cfg.Pipeline.CheckIntervalSec) * time.Second,
		},
		logger,
	)

	return &app{
		cfg:       cfg,
		store:     st,
		scheduler: sched,
		orch:      orch,
		logger:    logger,
	}, nil
}
