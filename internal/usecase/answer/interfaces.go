package answer

import (
	"context"

	"github.com/mkalinin/docqa-backend/internal/entity"
)

// EmbeddingConnector maps text to a fixed-dimensionality vector.
type EmbeddingConnector interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompletionConnector maps (model id, role-tagged messages) to generated text.
type CompletionConnector interface {
	Complete(ctx context.Context, modelID string, messages []entity.ChatMessage) (string, error)
}

// Synthesizer produces an answer for a question against one document.
// The concrete strategy (single model or ensemble) is a deployment-time
// choice made in the builder, not a per-request parameter.
type Synthesizer interface {
	Answer(ctx context.Context, documentID, question string) (string, error)
}
