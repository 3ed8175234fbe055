package entity

import "time"

// Document is an uploaded file whose extracted text can be queried through
// the ask pipeline. Documents are immutable once created and are never
// deleted by the answer core.
type Document struct {
	ID        string    `json:"document_id"`
	Name      string    `json:"name"`
	Content   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Fragment is an immutable chunk of a document's text paired with its
// embedding vector. Fragments are written only by the indexing worker;
// between upload and the worker finishing, a document legitimately has
// zero fragments.
type Fragment struct {
	ID         string
	DocumentID string
	Index      int
	Text       string
	Embedding  []float32
}

// IndexJob carries a freshly persisted document to the background indexing
// worker that chunks and embeds its text.
type IndexJob struct {
	DocumentID string
	Text       string
}
