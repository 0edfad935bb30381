// Package activity records the outcome of each processed message in an
// append-only log. The log is an audit trail, not an operational
// dependency; a failed append never fails the pipeline.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/inboxpilot/internal/model"
)

// Sink accepts activity records.
type Sink interface {
	Append(ctx context.Context, rec model.ActivityRecord) error
}

// FileSink appends one JSON line per record to a local file.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink creates a FileSink writing to path, creating parent
// directories as needed.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating activity log directory: %w", err)
	}
	return &FileSink{path: path}, nil
}

// Append writes rec as one JSON line. A zero ID or Timestamp is filled
// in. The line is written in a single call so concurrent appenders
// never interleave partial records.
func (f *FileSink) Append(ctx context.Context, rec model.ActivityRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding activity record: %w", err)
	}
	line = append(line, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(line); err != nil {
		return fmt.Errorf("appending activity record: %w", err)
	}
	return nil
}
