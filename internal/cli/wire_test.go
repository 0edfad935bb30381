package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/internal/scheduler"
)

func TestOpenStoreCreatesDatabaseAtConfiguredPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "inbox.db")

	st, err := openStore(dbPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestOpenStoreFallsBackToMemoryOnUnopenablePath(t *testing.T) {
	// A regular file where the data directory should go makes the
	// configured path unopenable.
	blocker := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	st, err := openStore(
		filepath.Join(blocker, "data", "inbox.db"),
		slog.New(slog.DiscardHandler),
	)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	// The degraded store still backs the scheduler for the run.
	ctx := context.Background()
	s := scheduler.New(st, nil)
	_, err = s.Schedule(ctx, "m1", "Report", "ada@example.com",
		model.PriorityHigh, 1)
	require.NoError(t, err)

	due, err := s.DueItems(ctx, time.Now().AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, due, 1)
}
