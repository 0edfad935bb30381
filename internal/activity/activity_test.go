package activity_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/activity"
	"github.com/nhle/inboxpilot/internal/model"
)

func TestFileSinkAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "activity.jsonl")
	sink, err := activity.NewFileSink(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Append(ctx, model.ActivityRecord{
		MessageID: "m1",
		Sender:    "ada@example.com",
		Subject:   "Quarterly report",
		Category:  model.CategoryImportant,
		Priority:  model.PriorityHigh,
		Sent:      true,
	}))
	require.NoError(t, sink.Append(ctx, model.ActivityRecord{
		MessageID: "m2",
		Category:  model.CategoryNewsletter,
		Priority:  model.PriorityLow,
		Sent:      false,
	}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var records []model.ActivityRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.ActivityRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, records, 2)

	assert.Equal(t, "m1", records[0].MessageID)
	assert.True(t, records[0].Sent)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].Timestamp.IsZero())

	assert.Equal(t, "m2", records[1].MessageID)
	assert.False(t, records[1].Sent)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestFileSinkHonorsCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.jsonl")
	sink, err := activity.NewFileSink(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sink.Append(ctx, model.ActivityRecord{MessageID: "m1"})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
