package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/repository"
)

func seedFragments(t *testing.T, store *repository.FragmentMemory, fragments []entity.Fragment) {
	t.Helper()
	if err := store.AddBatch(context.Background(), fragments); err != nil {
		t.Fatalf("seed fragments: %v", err)
	}
}

func TestRetrieveOrdersByAscendingDistance(t *testing.T) {
	store := repository.NewFragmentMemory()
	seedFragments(t, store, []entity.Fragment{
		{ID: "f3", DocumentID: "d1", Text: "fish swim", Embedding: []float32{0.9, 0}},
		{ID: "f1", DocumentID: "d1", Text: "cats are mammals", Embedding: []float32{0.1, 0}},
		{ID: "f2", DocumentID: "d1", Text: "dogs are loyal", Embedding: []float32{0.3, 0}},
	})

	embedder := &stubEmbedder{vectors: map[string][]float32{"what are cats?": {0, 0}}}
	retriever := NewRetriever(embedder, store)

	fragments, err := retriever.Retrieve(context.Background(), "d1", "what are cats?", 2)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if fragments[0].ID != "f1" || fragments[1].ID != "f2" {
		t.Fatalf("expected [f1 f2], got [%s %s]", fragments[0].ID, fragments[1].ID)
	}

	if embedder.calls != 1 {
		t.Fatalf("expected exactly 1 embedding call, got %d", embedder.calls)
	}
}

func TestRetrieveShortfallReturnsAll(t *testing.T) {
	store := repository.NewFragmentMemory()
	seedFragments(t, store, []entity.Fragment{
		{ID: "f1", DocumentID: "d1", Text: "alpha", Embedding: []float32{0.1, 0}},
		{ID: "f2", DocumentID: "d1", Text: "beta", Embedding: []float32{0.2, 0}},
	})

	retriever := NewRetriever(&stubEmbedder{}, store)

	fragments, err := retriever.Retrieve(context.Background(), "d1", "anything", 10)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected all 2 fragments on shortfall, got %d", len(fragments))
	}
}

func TestRetrieveEmptyDocumentIsNotAnError(t *testing.T) {
	retriever := NewRetriever(&stubEmbedder{}, repository.NewFragmentMemory())

	fragments, err := retriever.Retrieve(context.Background(), "d-no-fragments", "question", 5)
	if err != nil {
		t.Fatalf("expected no error for fragment-less document, got %v", err)
	}
	if len(fragments) != 0 {
		t.Fatalf("expected empty result, got %d fragments", len(fragments))
	}
}

func TestRetrieveWrapsEmbeddingFailure(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("embedding service down")}
	retriever := NewRetriever(embedder, repository.NewFragmentMemory())

	_, err := retriever.Retrieve(context.Background(), "d1", "question", 5)
	if err == nil {
		t.Fatal("expected error")
	}

	var retrievalErr *entity.RetrievalError
	if !errors.As(err, &retrievalErr) {
		t.Fatalf("expected RetrievalError, got %T: %v", err, err)
	}
	if retrievalErr.DocumentID != "d1" {
		t.Fatalf("expected document id d1 in error, got %s", retrievalErr.DocumentID)
	}
}

func TestRetrieveRejectsNonPositiveK(t *testing.T) {
	retriever := NewRetriever(&stubEmbedder{}, repository.NewFragmentMemory())

	_, err := retriever.Retrieve(context.Background(), "d1", "question", 0)
	if err == nil {
		t.Fatal("expected error for k=0")
	}
	if !errors.Is(err, entity.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestAssembleContext(t *testing.T) {
	fragments := []entity.Fragment{
		{Text: "cats are mammals"},
		{Text: "dogs are loyal"},
	}

	got := AssembleContext(fragments)
	want := "cats are mammals dogs are loyal"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestAssembleContextEmpty(t *testing.T) {
	if got := AssembleContext(nil); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
}
