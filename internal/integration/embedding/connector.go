package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/integration/common"
	pkghttp "github.com/mkalinin/docqa-backend/pkg/http"
	"go.uber.org/zap"
)

const embeddingsEndpoint = "/v1/embeddings"

type Connector struct {
	config    config.EmbeddingConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Embed maps text to its embedding vector using the deployment-configured
// model. Transient gateway failures are retried here; callers never retry.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "requesting embedding via embedding service", zap.Int("text_length", len(text)))

	req := &entity.EmbeddingRequest{
		Model:          c.config.Model,
		Input:          text,
		EncodingFormat: "float",
	}

	var resp entity.EmbeddingResponse
	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, embeddingsEndpoint, req, &resp)
	}, c.config.Retry.ToRetryOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("invalid embeddings response: empty data")
	}

	vector := resp.Data[0].Embedding
	if len(vector) != c.config.Dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: service returned %d, EMBEDDING_DIM is %d",
			len(vector), c.config.Dimension)
	}

	ctxzap.Debug(ctx, "embedding received", zap.Int("dimension", len(vector)))

	return vector, nil
}
