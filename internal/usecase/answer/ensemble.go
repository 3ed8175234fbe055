package answer

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EnsembleSynthesizer runs two independent retrieval passes, drafts two
// candidate answers with independently prompted models, and fuses both
// contexts and both candidates into the final answer with a third model.
type EnsembleSynthesizer struct {
	retriever      *Retriever
	completion     CompletionConnector
	primaryModel   string
	secondaryModel string
	fusionModel    string
	primaryTopK    int
	secondaryTopK  int
}

var _ Synthesizer = &EnsembleSynthesizer{}

func NewEnsembleSynthesizer(retriever *Retriever, completion CompletionConnector, cfg config.AnswerConfig) *EnsembleSynthesizer {
	return &EnsembleSynthesizer{
		retriever:      retriever,
		completion:     completion,
		primaryModel:   cfg.PrimaryModel,
		secondaryModel: cfg.SecondaryModel,
		fusionModel:    cfg.FusionModel,
		primaryTopK:    cfg.PrimaryTopK,
		secondaryTopK:  cfg.SecondaryTopK,
	}
}

func (s *EnsembleSynthesizer) Answer(ctx context.Context, documentID, question string) (string, error) {
	// Dual retrieval. The two fragment sets are independent nearest-neighbor
	// queries; the smaller set is not assumed to be a prefix of the larger.
	primaryFragments, err := s.retriever.Retrieve(ctx, documentID, question, s.primaryTopK)
	if err != nil {
		return "", err
	}
	secondaryFragments, err := s.retriever.Retrieve(ctx, documentID, question, s.secondaryTopK)
	if err != nil {
		return "", err
	}

	contextA := AssembleContext(primaryFragments)
	contextB := AssembleContext(secondaryFragments)

	// Parallel drafting, all-or-nothing: a failed branch aborts the whole
	// request so the fused answer is never built from a single candidate.
	var answerA, answerB string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		answerA, err = completeWithContext(gctx, s.completion, s.primaryModel, entity.StageDraftPrimary, contextA, question)
		return err
	})
	g.Go(func() error {
		var err error
		answerB, err = completeWithContext(gctx, s.completion, s.secondaryModel, entity.StageDraftSecondary, contextB, question)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	ctxzap.Debug(ctx, "draft answers generated",
		zap.Int("primary_length", len(answerA)),
		zap.Int("secondary_length", len(answerB)),
	)

	messages := []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: buildFusionPrompt(contextA, contextB, answerA, answerB)},
		{Role: entity.RoleUser, Content: question},
	}

	finalAnswer, err := s.completion.Complete(ctx, s.fusionModel, messages)
	if err != nil {
		return "", &entity.SynthesisError{Stage: entity.StageFusion, Model: s.fusionModel, Err: err}
	}

	// Only the fused output reaches the caller; the draft candidates stay
	// internal.
	return finalAnswer, nil
}

// buildFusionPrompt embeds both contexts and both candidate answers verbatim.
func buildFusionPrompt(contextA, contextB, answerA, answerB string) string {
	return fmt.Sprintf(
		"You are a helpful assistant. Based on this first context: %s and this second context: %s, "+
			"here is the first possible response: %s and here is the second possible response: %s. "+
			"Based on that, craft a final response to the user question.",
		contextA, contextB, answerA, answerB,
	)
}
