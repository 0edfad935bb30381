package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/inboxpilot/internal/model"
)

// retrievalRow is the database shape of a retrieval record; the
// embedding is stored as a JSON array.
type retrievalRow struct {
	ID          string    `db:"id"`
	MessageBody string    `db:"message_body"`
	ReplyBody   string    `db:"reply_body"`
	Embedding   string    `db:"embedding"`
	StoredAt    time.Time `db:"stored_at"`
}

// AddRetrievalRecord appends one (message, reply, embedding) record.
// A zero-valued ID or StoredAt is filled in.
func (s *SQLiteStore) AddRetrievalRecord(
	ctx context.Context, rec model.RetrievalRecord,
) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.StoredAt.IsZero() {
		rec.StoredAt = time.Now()
	}

	embJSON, err := json.Marshal(rec.Embedding)
	if err != nil {
		return &StorageError{
			Op:  "add_retrieval_record",
			Err: fmt.Errorf("encoding embedding: %w", err),
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO retrieval_records
			(id, message_body, reply_body, embedding, stored_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.MessageBody, rec.ReplyBody, string(embJSON), rec.StoredAt,
	)
	if err != nil {
		return &StorageError{
			Op:  "add_retrieval_record",
			Err: fmt.Errorf("inserting retrieval record: %w", err),
		}
	}
	return nil
}

// ListRetrievalRecords returns the full corpus with embeddings decoded.
func (s *SQLiteStore) ListRetrievalRecords(
	ctx context.Context,
) ([]model.RetrievalRecord, error) {
	var rows []retrievalRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, message_body, reply_body, embedding, stored_at
		 FROM retrieval_records ORDER BY stored_at ASC`)
	if err != nil {
		return nil, &StorageError{
			Op:  "list_retrieval_records",
			Err: fmt.Errorf("listing retrieval records: %w", err),
		}
	}

	records := make([]model.RetrievalRecord, 0, len(rows))
	for _, row := range rows {
		var emb []float32
		if err := json.Unmarshal([]byte(row.Embedding), &emb); err != nil {
			return nil, &StorageError{
				Op:  "list_retrieval_records",
				Err: fmt.Errorf("decoding embedding for %s: %w", row.ID, err),
			}
		}
		records = append(records, model.RetrievalRecord{
			ID:          row.ID,
			MessageBody: row.MessageBody,
			ReplyBody:   row.ReplyBody,
			Embedding:   emb,
			StoredAt:    row.StoredAt,
		})
	}

	return records, nil
}

// CountRetrievalRecords returns the corpus size.
func (s *SQLiteStore) CountRetrievalRecords(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM retrieval_records`)
	if err != nil {
		return 0, &StorageError{
			Op:  "count_retrieval_records",
			Err: fmt.Errorf("counting retrieval records: %w", err),
		}
	}
	return n, nil
}
