package answer

import (
	"context"
	"sync"

	"github.com/mkalinin/docqa-backend/internal/entity"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0}, nil
}

type completionCall struct {
	model    string
	messages []entity.ChatMessage
}

type fakeCompletion struct {
	mu        sync.Mutex
	calls     []completionCall
	responses map[string]string
	failures  map[string]error
}

func (f *fakeCompletion) Complete(_ context.Context, modelID string, messages []entity.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, completionCall{model: modelID, messages: messages})
	if err, ok := f.failures[modelID]; ok {
		return "", err
	}
	if resp, ok := f.responses[modelID]; ok {
		return resp, nil
	}
	return "answer from " + modelID, nil
}

func (f *fakeCompletion) callCount(model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c.model == model {
			n++
		}
	}
	return n
}

func (f *fakeCompletion) lastCallFor(model string) (completionCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].model == model {
			return f.calls[i], true
		}
	}
	return completionCall{}, false
}
