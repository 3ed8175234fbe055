package ingest

import (
	"context"

	"github.com/mkalinin/docqa-backend/internal/entity"
)

// IndexQueue hands documents off to the background indexing worker. Enqueue
// must not block on embedding work; it fails fast when the queue is full.
type IndexQueue interface {
	Enqueue(ctx context.Context, job entity.IndexJob) error
}
