package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// MailboxConfig holds the mailbox backend settings.
type MailboxConfig struct {
	// Provider selects the backend: "imap" or "gmail".
	Provider string `mapstructure:"provider" yaml:"provider"`

	// IMAP/SMTP settings (provider "imap").
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort string `mapstructure:"smtp_port" yaml:"smtp_port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`

	// Gmail settings (provider "gmail").
	GmailCredentialsPath string `mapstructure:"gmail_credentials_path" yaml:"gmail_credentials_path"`
	GmailTokenPath       string `mapstructure:"gmail_token_path" yaml:"gmail_token_path"`
}

// AIConfig holds settings for the text-generation service.
type AIConfig struct {
	Model       string  `mapstructure:"model" yaml:"model"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// EmbeddingConfig holds settings for the embedding service.
type EmbeddingConfig struct {
	// BaseURL is the root of an OpenAI-compatible embeddings API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// PipelineConfig holds the processing policy knobs.
type PipelineConfig struct {
	// MaxMessagesPerRun caps how many unread messages one run fetches.
	MaxMessagesPerRun int `mapstructure:"max_messages_per_run" yaml:"max_messages_per_run"`

	// CheckIntervalSec is the continuous-mode poll interval.
	CheckIntervalSec int `mapstructure:"check_interval_sec" yaml:"check_interval_sec"`

	// ApprovalRequired gates sending behind interactive review. When
	// false, drafts are auto-approved (the gate still runs so the
	// approved-before-send invariant holds).
	ApprovalRequired bool `mapstructure:"approval_required" yaml:"approval_required"`

	// HighPriorityThreshold is the minimum classification confidence
	// for the auto-respond policy gate.
	HighPriorityThreshold float64 `mapstructure:"high_priority_threshold" yaml:"high_priority_threshold"`

	// MaxRefineRounds bounds the refine loop in one approval session.
	MaxRefineRounds int `mapstructure:"max_refine_rounds" yaml:"max_refine_rounds"`

	// FollowUpDays is how far out follow-up reminders are scheduled.
	FollowUpDays int `mapstructure:"follow_up_days" yaml:"follow_up_days"`

	// RetrievalK is how many similar past replies ground each draft.
	RetrievalK int `mapstructure:"retrieval_k" yaml:"retrieval_k"`
}

// StorageConfig holds the durable-store locations.
type StorageConfig struct {
	// DBPath is the SQLite database holding follow-ups and the
	// retrieval corpus.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// ActivityLogPath is the append-only activity log file.
	ActivityLogPath string `mapstructure:"activity_log_path" yaml:"activity_log_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Mailbox   MailboxConfig   `mapstructure:"mailbox" yaml:"mailbox"`
	AI        AIConfig        `mapstructure:"ai" yaml:"ai"`
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline" yaml:"pipeline"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/inboxpilot/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "inboxpilot", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".local", "share", "inboxpilot")

	return &AppConfig{
		Mailbox: MailboxConfig{
			Provider: "imap",
			IMAPPort: "993",
			SMTPPort: "465",
			TLS:      true,
		},
		AI: AIConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   1024,
			Temperature: 0.7,
		},
		Embedding: EmbeddingConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-3-small",
		},
		Pipeline: PipelineConfig{
			MaxMessagesPerRun:     50,
			CheckIntervalSec:      300,
			ApprovalRequired:      true,
			HighPriorityThreshold: 0.7,
			MaxRefineRounds:       3,
			FollowUpDays:          3,
			RetrievalK:            3,
		},
		Storage: StorageConfig{
			DBPath:          filepath.Join(dataDir, "inboxpilot.db"),
			ActivityLogPath: filepath.Join(dataDir, "activity.jsonl"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := defaultAppConfig()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("mailbox.provider", def.Mailbox.Provider)
	v.SetDefault("mailbox.imap_port", def.Mailbox.IMAPPort)
	v.SetDefault("mailbox.smtp_port", def.Mailbox.SMTPPort)
	v.SetDefault("mailbox.tls", def.Mailbox.TLS)
	v.SetDefault("ai.model", def.AI.Model)
	v.SetDefault("ai.max_tokens", def.AI.MaxTokens)
	v.SetDefault("ai.temperature", def.AI.Temperature)
	v.SetDefault("embedding.base_url", def.Embedding.BaseURL)
	v.SetDefault("embedding.model", def.Embedding.Model)
	v.SetDefault("pipeline.max_messages_per_run", def.Pipeline.MaxMessagesPerRun)
	v.SetDefault("pipeline.check_interval_sec", def.Pipeline.CheckIntervalSec)
	v.SetDefault("pipeline.approval_required", def.Pipeline.ApprovalRequired)
	v.SetDefault("pipeline.high_priority_threshold", def.Pipeline.HighPriorityThreshold)
	v.SetDefault("pipeline.max_refine_rounds", def.Pipeline.MaxRefineRounds)
	v.SetDefault("pipeline.follow_up_days", def.Pipeline.FollowUpDays)
	v.SetDefault("pipeline.retrieval_k", def.Pipeline.RetrievalK)
	v.SetDefault("storage.db_path", def.Storage.DBPath)
	v.SetDefault("storage.activity_log_path", def.Storage.ActivityLogPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return def, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("mailbox", cfg.Mailbox)
	v.Set("ai", cfg.AI)
	v.Set("embedding", cfg.Embedding)
	v.Set("pipeline", cfg.Pipeline)
	v.Set("storage", cfg.Storage)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
