package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/repository"
	"go.uber.org/zap"
)

// Retriever turns a question into a query vector and collects the nearest
// fragments of a document.
type Retriever struct {
	embedding EmbeddingConnector
	fragments repository.FragmentRepository
}

func NewRetriever(embedding EmbeddingConnector, fragments repository.FragmentRepository) *Retriever {
	return &Retriever{
		embedding: embedding,
		fragments: fragments,
	}
}

// Retrieve embeds the question (one gateway call per invocation; question
// vectors are never cached across calls) and returns up to k fragments in
// ascending distance order. A document with fewer than k fragments yields
// all of them; a document with none yields an empty set, not an error.
func (r *Retriever) Retrieve(ctx context.Context, documentID, question string, k int) ([]entity.Fragment, error) {
	if k < 1 {
		return nil, &entity.RetrievalError{
			DocumentID: documentID,
			Err:        fmt.Errorf("%w: k must be >= 1, got %d", entity.ErrInvalidParameter, k),
		}
	}

	vector, err := r.embedding.Embed(ctx, question)
	if err != nil {
		return nil, &entity.RetrievalError{DocumentID: documentID, Err: fmt.Errorf("embed question: %w", err)}
	}

	fragments, err := r.fragments.Nearest(ctx, documentID, vector, k)
	if err != nil {
		return nil, &entity.RetrievalError{DocumentID: documentID, Err: fmt.Errorf("nearest fragments: %w", err)}
	}

	ctxzap.Debug(ctx, "fragments retrieved",
		zap.String("document_id", documentID),
		zap.Int("k", k),
		zap.Int("count", len(fragments)),
	)

	return fragments, nil
}

// AssembleContext concatenates fragment texts in retrieval order, separated
// by a single space. An empty fragment set yields an empty context; the
// synthesis stages still attempt an answer from the question alone.
func AssembleContext(fragments []entity.Fragment) string {
	texts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		texts = append(texts, f.Text)
	}
	return strings.Join(texts, " ")
}
