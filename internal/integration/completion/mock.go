package completion

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is a mock completion gateway for local runs without a real
// language-model service.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, modelID string, messages []entity.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	ctxzap.Info(ctx, "[MOCK] generating chat completion",
		zap.String("model", modelID),
		zap.Int("message_count", len(messages)),
	)

	question := messages[len(messages)-1].Content

	answer := fmt.Sprintf("[MOCK %s] This is a generated answer to: %s", modelID, question)

	ctxzap.Info(ctx, "[MOCK] chat completion generated", zap.Int("answer_length", len(answer)))
	return answer, nil
}
