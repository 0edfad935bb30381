package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "imap", cfg.Mailbox.Provider)
	assert.Equal(t, "993", cfg.Mailbox.IMAPPort)
	assert.True(t, cfg.Pipeline.ApprovalRequired)
	assert.Equal(t, 0.7, cfg.Pipeline.HighPriorityThreshold)
	assert.Equal(t, 3, cfg.Pipeline.MaxRefineRounds)
	assert.Equal(t, 3, cfg.Pipeline.FollowUpDays)
	assert.Equal(t, 3, cfg.Pipeline.RetrievalK)
	assert.NotEmpty(t, cfg.Storage.DBPath)
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg := defaultAppConfig()
	cfg.Mailbox.Provider = "gmail"
	cfg.Mailbox.GmailCredentialsPath = "/tmp/creds.json"
	cfg.Pipeline.MaxMessagesPerRun = 5
	cfg.Pipeline.ApprovalRequired = false

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gmail", loaded.Mailbox.Provider)
	assert.Equal(t, "/tmp/creds.json", loaded.Mailbox.GmailCredentialsPath)
	assert.Equal(t, 5, loaded.Pipeline.MaxMessagesPerRun)
	assert.False(t, loaded.Pipeline.ApprovalRequired)

	// Untouched sections keep their defaults.
	assert.Equal(t, "text-embedding-3-small", loaded.Embedding.Model)
}
