package embedding

import (
	"context"
	"hash/fnv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a mock embedding gateway for local runs without a real
// embedding service. It derives the vector from the text deterministically,
// so identical questions always map to identical query vectors.
type MockConnector struct {
	dimension int
	logger    *zap.Logger
}

func NewMockConnector(dimension int, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		dimension: dimension,
		logger:    logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding text", zap.Int("text_length", len(text)))

	vector := make([]float32, m.dimension)
	h := fnv.New32a()
	for i := range vector {
		h.Write([]byte(text))
		h.Write([]byte{byte(i)})
		vector[i] = float32(h.Sum32()%2001)/1000.0 - 1.0
	}

	return vector, nil
}
