package completion

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

const chatCompletionsEndpoint = "/v1/chat/completions"

type Connector struct {
	config    config.CompletionConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CompletionConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Complete sends the ordered role-tagged messages to the given model and
// returns the first choice's content verbatim, without post-processing.
func (c *Connector) Complete(ctx context.Context, modelID string, messages []entity.ChatMessage) (string, error) {
	ctxzap.Debug(ctx, "requesting chat completion",
		zap.String("model", modelID),
		zap.Int("message_count", len(messages)),
	)

	req := &entity.ChatCompletionRequest{
		Model:    modelID,
		Messages: messages,
	}

	var resp entity.ChatCompletionResponse
	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, chatCompletionsEndpoint, req, &resp)
	}, c.config.Retry.ToRetryOptions(ctx)...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("invalid completion response: empty choices")
	}

	answer := resp.Choices[0].Message.Content

	ctxzap.Debug(ctx, "chat completion received",
		zap.String("model", modelID),
		zap.Int("answer_length", len(answer)),
	)

	return answer, nil
}
