package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/repository"
)

func newTestRetriever(t *testing.T, fragments []entity.Fragment, questionVectors map[string][]float32) *Retriever {
	t.Helper()
	store := repository.NewFragmentMemory()
	seedFragments(t, store, fragments)
	return NewRetriever(&stubEmbedder{vectors: questionVectors}, store)
}

func TestSingleSynthesizerBuildsCanonicalMessages(t *testing.T) {
	retriever := newTestRetriever(t, []entity.Fragment{
		{ID: "f1", DocumentID: "d1", Text: "cats are mammals", Embedding: []float32{0.1, 0}},
		{ID: "f2", DocumentID: "d1", Text: "dogs are loyal", Embedding: []float32{0.3, 0}},
	}, map[string][]float32{"what are cats?": {0, 0}})

	completion := &fakeCompletion{responses: map[string]string{"model-a": "cats are furry mammals"}}
	synth := NewSingleSynthesizer(retriever, completion, config.AnswerConfig{Model: "model-a", TopK: 2})

	got, err := synth.Answer(context.Background(), "d1", "what are cats?")
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if got != "cats are furry mammals" {
		t.Fatalf("expected verbatim model output, got %q", got)
	}

	call, ok := completion.lastCallFor("model-a")
	if !ok {
		t.Fatal("expected a completion call")
	}
	if len(call.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(call.messages))
	}

	system := call.messages[0]
	if system.Role != entity.RoleSystem {
		t.Fatalf("expected system role first, got %s", system.Role)
	}
	wantSystem := systemPromptPrefix + "cats are mammals dogs are loyal"
	if system.Content != wantSystem {
		t.Fatalf("unexpected system message:\nwant %q\ngot  %q", wantSystem, system.Content)
	}

	user := call.messages[1]
	if user.Role != entity.RoleUser || user.Content != "what are cats?" {
		t.Fatalf("expected raw question as user message, got %+v", user)
	}
}

func TestSingleSynthesizerToleratesEmptyContext(t *testing.T) {
	retriever := newTestRetriever(t, nil, nil)
	completion := &fakeCompletion{responses: map[string]string{"model-a": "best effort answer"}}
	synth := NewSingleSynthesizer(retriever, completion, config.AnswerConfig{Model: "model-a", TopK: 5})

	got, err := synth.Answer(context.Background(), "d-empty", "question without context")
	if err != nil {
		t.Fatalf("expected an answer despite empty context, got %v", err)
	}
	if got != "best effort answer" {
		t.Fatalf("unexpected answer %q", got)
	}

	call, _ := completion.lastCallFor("model-a")
	if call.messages[0].Content != systemPromptPrefix {
		t.Fatalf("expected bare prompt prefix for empty context, got %q", call.messages[0].Content)
	}
}

func TestSingleSynthesizerWrapsCompletionFailure(t *testing.T) {
	retriever := newTestRetriever(t, nil, nil)
	completion := &fakeCompletion{failures: map[string]error{"model-a": errors.New("model overloaded")}}
	synth := NewSingleSynthesizer(retriever, completion, config.AnswerConfig{Model: "model-a", TopK: 5})

	_, err := synth.Answer(context.Background(), "d1", "question")
	if err == nil {
		t.Fatal("expected error")
	}

	var synthErr *entity.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("expected SynthesisError, got %T: %v", err, err)
	}
	if synthErr.Stage != entity.StageSingle || synthErr.Model != "model-a" {
		t.Fatalf("expected stage/model in error, got %+v", synthErr)
	}
}

func ensembleConfig() config.AnswerConfig {
	return config.AnswerConfig{
		Mode:           config.ModeEnsemble,
		PrimaryModel:   "model-primary",
		SecondaryModel: "model-secondary",
		FusionModel:    "model-fusion",
		PrimaryTopK:    1,
		SecondaryTopK:  2,
	}
}

func ensembleFixtureRetriever(t *testing.T) *Retriever {
	t.Helper()
	return newTestRetriever(t, []entity.Fragment{
		{ID: "f1", DocumentID: "d1", Text: "cats are mammals", Embedding: []float32{0.1, 0}},
		{ID: "f2", DocumentID: "d1", Text: "dogs are loyal", Embedding: []float32{0.3, 0}},
	}, map[string][]float32{"what are cats?": {0, 0}})
}

func TestEnsembleFusionPromptContainsAllInputs(t *testing.T) {
	completion := &fakeCompletion{responses: map[string]string{
		"model-primary":   "primary draft about cats",
		"model-secondary": "secondary draft about cats",
		"model-fusion":    "final fused answer",
	}}

	synth := NewEnsembleSynthesizer(ensembleFixtureRetriever(t), completion, ensembleConfig())

	got, err := synth.Answer(context.Background(), "d1", "what are cats?")
	if err != nil {
		t.Fatalf("ensemble answer failed: %v", err)
	}
	if got != "final fused answer" {
		t.Fatalf("expected only the fusion output, got %q", got)
	}

	fusionCall, ok := completion.lastCallFor("model-fusion")
	if !ok {
		t.Fatal("expected a fusion call")
	}

	system := fusionCall.messages[0].Content
	// contextA is the k=1 set, contextB the k=2 set.
	for _, want := range []string{
		"cats are mammals",
		"cats are mammals dogs are loyal",
		"primary draft about cats",
		"secondary draft about cats",
	} {
		if !strings.Contains(system, want) {
			t.Fatalf("fusion system message missing %q:\n%s", want, system)
		}
	}

	if fusionCall.messages[1].Content != "what are cats?" {
		t.Fatalf("expected original question as fusion user message, got %q", fusionCall.messages[1].Content)
	}
}

func TestEnsembleAllOrNothing(t *testing.T) {
	completion := &fakeCompletion{
		responses: map[string]string{"model-primary": "primary draft"},
		failures:  map[string]error{"model-secondary": errors.New("secondary model unavailable")},
	}

	synth := NewEnsembleSynthesizer(ensembleFixtureRetriever(t), completion, ensembleConfig())

	_, err := synth.Answer(context.Background(), "d1", "what are cats?")
	if err == nil {
		t.Fatal("expected ensemble to fail when one branch fails")
	}

	var synthErr *entity.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("expected SynthesisError, got %T: %v", err, err)
	}
	if synthErr.Stage != entity.StageDraftSecondary || synthErr.Model != "model-secondary" {
		t.Fatalf("expected failing branch in error, got %+v", synthErr)
	}

	if n := completion.callCount("model-fusion"); n != 0 {
		t.Fatalf("fusion must not be invoked after a branch failure, got %d calls", n)
	}
}

func TestEnsembleDraftBranchesUseDistinctContexts(t *testing.T) {
	completion := &fakeCompletion{}

	synth := NewEnsembleSynthesizer(ensembleFixtureRetriever(t), completion, ensembleConfig())

	if _, err := synth.Answer(context.Background(), "d1", "what are cats?"); err != nil {
		t.Fatalf("ensemble answer failed: %v", err)
	}

	primary, _ := completion.lastCallFor("model-primary")
	secondary, _ := completion.lastCallFor("model-secondary")

	if primary.messages[0].Content != systemPromptPrefix+"cats are mammals" {
		t.Fatalf("unexpected primary context: %q", primary.messages[0].Content)
	}
	if secondary.messages[0].Content != systemPromptPrefix+"cats are mammals dogs are loyal" {
		t.Fatalf("unexpected secondary context: %q", secondary.messages[0].Content)
	}
}
