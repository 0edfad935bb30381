package model

import "time"

// RetrievalRecord is one (message, reply) pair in the similarity corpus.
// Records are created only from replies that were approved and actually
// sent, so the corpus reflects only human-validated language. Append-only.
type RetrievalRecord struct {
	// ID is the internal unique identifier for this record.
	ID string `json:"id" db:"id"`

	// MessageBody is the inbound message text the embedding was
	// computed from.
	MessageBody string `json:"message_body" db:"message_body"`

	// ReplyBody is the reply that was sent for the message.
	ReplyBody string `json:"reply_body" db:"reply_body"`

	// Embedding is the vector for MessageBody.
	Embedding []float32 `json:"embedding" db:"-"`

	// StoredAt is when the pair was added to the corpus.
	StoredAt time.Time `json:"stored_at" db:"stored_at"`

	// Similarity is the cosine similarity to the query that returned
	// this record. Only populated on search results.
	Similarity float64 `json:"similarity,omitempty" db:"-"`
}
