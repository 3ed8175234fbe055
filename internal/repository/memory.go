package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/mkalinin/docqa-backend/internal/entity"
)

// In-memory repositories used when ENABLE_MOCKS=true and by tests. They
// mirror the PostgreSQL semantics, in particular nearest-fragment ordering
// by Euclidean distance with fragment id as the tie-break.

var (
	_ DocumentRepository = &DocumentMemory{}
	_ FragmentRepository = &FragmentMemory{}
)

type DocumentMemory struct {
	mu    sync.RWMutex
	docs  map[string]entity.Document
	order []string
}

func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{docs: make(map[string]entity.Document)}
}

func (r *DocumentMemory) Create(_ context.Context, doc entity.Document) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc.CreatedAt = time.Now()
	r.docs[doc.ID] = doc
	r.order = append(r.order, doc.ID)

	return &doc, nil
}

func (r *DocumentMemory) Get(_ context.Context, id string) (*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, entity.ErrDocumentNotFound
	}
	return &doc, nil
}

func (r *DocumentMemory) List(_ context.Context) ([]*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*entity.Document, 0, len(r.order))
	for _, id := range r.order {
		doc := r.docs[id]
		docs = append(docs, &doc)
	}
	return docs, nil
}

type FragmentMemory struct {
	mu        sync.RWMutex
	fragments []entity.Fragment
}

func NewFragmentMemory() *FragmentMemory {
	return &FragmentMemory{}
}

func (r *FragmentMemory) AddBatch(_ context.Context, fragments []entity.Fragment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fragments = append(r.fragments, fragments...)
	return nil
}

func (r *FragmentMemory) Nearest(_ context.Context, documentID string, queryVector []float32, k int) ([]entity.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		fragment entity.Fragment
		distance float64
	}

	var candidates []scored
	for _, f := range r.fragments {
		if f.DocumentID != documentID {
			continue
		}
		candidates = append(candidates, scored{fragment: f, distance: l2Distance(f.Embedding, queryVector)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance == candidates[j].distance {
			return candidates[i].fragment.ID < candidates[j].fragment.ID
		}
		return candidates[i].distance < candidates[j].distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]entity.Fragment, 0, k)
	for i := 0; i < k; i++ {
		results = append(results, candidates[i].fragment)
	}

	return results, nil
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
