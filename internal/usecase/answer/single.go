package answer

import (
	"context"

	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
)

const systemPromptPrefix = "You are a helpful assistant. Here is the context to use to reply to the user question: "

// SingleSynthesizer answers with one retrieval pass and one completion call.
type SingleSynthesizer struct {
	retriever  *Retriever
	completion CompletionConnector
	model      string
	topK       int
}

var _ Synthesizer = &SingleSynthesizer{}

func NewSingleSynthesizer(retriever *Retriever, completion CompletionConnector, cfg config.AnswerConfig) *SingleSynthesizer {
	return &SingleSynthesizer{
		retriever:  retriever,
		completion: completion,
		model:      cfg.Model,
		topK:       cfg.TopK,
	}
}

func (s *SingleSynthesizer) Answer(ctx context.Context, documentID, question string) (string, error) {
	fragments, err := s.retriever.Retrieve(ctx, documentID, question, s.topK)
	if err != nil {
		return "", err
	}

	return completeWithContext(ctx, s.completion, s.model, entity.StageSingle, AssembleContext(fragments), question)
}

// completeWithContext issues one completion call with the canonical
// context-bearing system message and the raw question as the user message.
// The generated text is returned verbatim.
func completeWithContext(ctx context.Context, completion CompletionConnector, modelID, stage, contextText, question string) (string, error) {
	messages := []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: systemPromptPrefix + contextText},
		{Role: entity.RoleUser, Content: question},
	}

	answer, err := completion.Complete(ctx, modelID, messages)
	if err != nil {
		return "", &entity.SynthesisError{Stage: stage, Model: modelID, Err: err}
	}

	return answer, nil
}
