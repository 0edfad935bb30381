// Package retrieval implements the similarity index that grounds reply
// drafting: a corpus of embedded (message, reply) pairs with
// nearest-neighbor search by cosine similarity.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/nhle/inboxpilot/internal/model"
	"github.com/nhle/inboxpilot/internal/store"
)

// RetrievalError indicates the similarity index was unusable for a
// call, whether the embedding service or the backing store failed.
// Callers treat it as a degraded-but-functional condition: an empty
// result set, never a pipeline abort.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failure (%s): %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// IsRetrievalError reports whether err (or any error in its chain) is a
// RetrievalError.
func IsRetrievalError(err error) bool {
	var rErr *RetrievalError
	return errors.As(err, &rErr)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index stores embedded (message, reply) pairs and answers
// nearest-neighbor queries. The corpus is append-only; records are
// created only from replies that were approved and sent.
type Index struct {
	embedder Embedder
	store    store.RetrievalStore
	logger   *slog.Logger
}

// NewIndex creates a similarity index over the given store and embedder.
func NewIndex(embedder Embedder, st store.RetrievalStore, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Index{embedder: embedder, store: st, logger: logger}
}

// AddPair embeds messageBody and appends a retrieval record pairing it
// with replyBody.
func (i *Index) AddPair(ctx context.Context, messageBody, replyBody string) error {
	vec, err := i.embedder.Embed(ctx, messageBody)
	if err != nil {
		return &RetrievalError{
			Op:  "add_pair",
			Err: fmt.Errorf("embedding message body: %w", err),
		}
	}

	rec := model.RetrievalRecord{
		MessageBody: messageBody,
		ReplyBody:   replyBody,
		Embedding:   vec,
	}
	if err := i.store.AddRetrievalRecord(ctx, rec); err != nil {
		return fmt.Errorf("storing retrieval record: %w", err)
	}

	i.logger.Debug("retrieval pair stored", "message_chars", len(messageBody))
	return nil
}

// Search embeds queryText and returns up to k records ordered by
// non-increasing cosine similarity. A corpus smaller than k returns
// fewer records; an empty corpus returns an empty slice. Any failure
// is a RetrievalError, so callers can degrade to an empty context.
func (i *Index) Search(
	ctx context.Context, queryText string, k int,
) ([]model.RetrievalRecord, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := i.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, &RetrievalError{
			Op:  "search",
			Err: fmt.Errorf("embedding query: %w", err),
		}
	}

	records, err := i.store.ListRetrievalRecords(ctx)
	if err != nil {
		return nil, &RetrievalError{
			Op:  "search",
			Err: fmt.Errorf("loading retrieval corpus: %w", err),
		}
	}
	if len(records) == 0 {
		return nil, nil
	}

	scored := make([]model.RetrievalRecord, 0, len(records))
	for _, rec := range records {
		rec.Similarity = cosine(queryVec, rec.Embedding)
		scored = append(scored, rec)
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Similarity > scored[b].Similarity
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Count returns the corpus size.
func (i *Index) Count(ctx context.Context) (int, error) {
	return i.store.CountRetrievalRecords(ctx)
}

// cosine returns the cosine similarity of two vectors. Mismatched or
// zero-magnitude vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
