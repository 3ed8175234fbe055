package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/pkg/chunker"
	"github.com/mkalinin/docqa-backend/internal/repository"
	"go.uber.org/zap"
)

// EmbeddingConnector is the slice of the embedding gateway the indexer needs.
type EmbeddingConnector interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Indexer consumes uploaded documents from a bounded queue, splits their text
// into chunks, embeds each chunk and stores the resulting fragments. A failed
// document is logged and skipped; it never takes the worker down.
type Indexer struct {
	jobs            chan entity.IndexJob
	chunker         *chunker.SentenceChunker
	embedding       EmbeddingConnector
	fragments       repository.FragmentRepository
	shutdownTimeout time.Duration
	done            chan struct{}
	logger          *zap.Logger
}

func NewIndexer(
	cfg config.IndexerConfig,
	embedding EmbeddingConnector,
	fragments repository.FragmentRepository,
	logger *zap.Logger,
) *Indexer {
	return &Indexer{
		jobs:            make(chan entity.IndexJob, cfg.QueueSize),
		chunker:         chunker.NewSentenceChunker(cfg),
		embedding:       embedding,
		fragments:       fragments,
		shutdownTimeout: cfg.ShutdownTimeout,
		done:            make(chan struct{}),
		logger:          logger.Named("indexer"),
	}
}

// Enqueue hands a document to the worker without blocking. It fails when the
// queue is full so the upload request can surface backpressure instead of
// hanging.
func (w *Indexer) Enqueue(_ context.Context, job entity.IndexJob) error {
	select {
	case w.jobs <- job:
		return nil
	default:
		return fmt.Errorf("indexing queue is full (%d pending)", cap(w.jobs))
	}
}

// Start launches the worker loop. It returns immediately.
func (w *Indexer) Start() {
	go func() {
		defer close(w.done)
		for job := range w.jobs {
			w.index(job)
		}
	}()
}

// Stop closes the queue and waits for the in-flight jobs to drain, up to the
// configured shutdown timeout.
func (w *Indexer) Stop(ctx context.Context) error {
	close(w.jobs)

	timeout := w.shutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	select {
	case <-w.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("indexer shutdown timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Indexer) index(job entity.IndexJob) {
	ctx := context.Background()
	start := time.Now()

	chunks := w.chunker.Chunk(job.Text)
	if len(chunks) == 0 {
		w.logger.Warn("document produced no chunks", zap.String("document_id", job.DocumentID))
		return
	}

	fragments := make([]entity.Fragment, 0, len(chunks))
	for i, text := range chunks {
		vector, err := w.embedding.Embed(ctx, text)
		if err != nil {
			w.logger.Error("embed chunk failed, document skipped",
				zap.String("document_id", job.DocumentID),
				zap.Int("chunk_index", i),
				zap.Error(err),
			)
			return
		}
		fragments = append(fragments, entity.Fragment{
			ID:         uuid.New().String(),
			DocumentID: job.DocumentID,
			Index:      i,
			Text:       text,
			Embedding:  vector,
		})
	}

	if err := w.fragments.AddBatch(ctx, fragments); err != nil {
		w.logger.Error("store fragments failed",
			zap.String("document_id", job.DocumentID),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("document indexed",
		zap.String("document_id", job.DocumentID),
		zap.Int("fragment_count", len(fragments)),
		zap.Duration("took", time.Since(start)),
	)
}
