// Package vectorindex provides the similarity search backend and the
// namespace-aware router that sits between text and vectors.
package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

type bucket struct {
	records []*model.VectorRecord
	byID    map[model.VectorRecordID]int
}

func newBucket() *bucket {
	return &bucket{byID: map[model.VectorRecordID]int{}}
}

// Engine is an in-memory vector store using brute-force cosine similarity.
// Namespace isolation is a hard property: every record is stored under
// exactly one namespace and search never crosses buckets.
type Engine struct {
	mu        sync.RWMutex
	dimension int
	buckets   map[types.Namespace]*bucket
}

// NewEngine creates an engine accepting vectors of the given dimension
func NewEngine(dimension int) *Engine {
	if dimension <= 0 {
		dimension = model.EmbeddingDimension
	}
	return &Engine{
		dimension: dimension,
		buckets:   map[types.Namespace]*bucket{},
	}
}

// Upsert stores records under the namespace. A record whose ID already
// exists in the namespace is replaced, so re-ingesting the same document is
// idempotent.
func (e *Engine) Upsert(ctx context.Context, ns types.Namespace, records []*model.VectorRecord) error {
	for _, r := range records {
		if len(r.Embedding) != e.dimension {
			return goerr.Wrap(types.ErrDimensionMismatch, "record embedding has wrong dimension",
				goerr.V("expected", e.dimension),
				goerr.V("actual", len(r.Embedding)),
				goerr.V("record_id", r.ID),
			)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.buckets[ns]
	if !ok {
		b = newBucket()
		e.buckets[ns] = b
	}

	for _, r := range records {
		stored := *r
		if i, ok := b.byID[r.ID]; ok {
			b.records[i] = &stored
			continue
		}
		b.byID[r.ID] = len(b.records)
		b.records = append(b.records, &stored)
	}
	return nil
}

// Search returns up to limit records from the namespace ordered by
// descending cosine similarity. An unknown namespace yields no results.
func (e *Engine) Search(ctx context.Context, ns types.Namespace, vector []float64, limit int) ([]*model.ScoredRecord, error) {
	if len(vector) != e.dimension {
		return nil, goerr.Wrap(types.ErrDimensionMismatch, "query vector has wrong dimension",
			goerr.V("expected", e.dimension),
			goerr.V("actual", len(vector)),
		)
	}
	if limit <= 0 {
		return nil, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.buckets[ns]
	if !ok {
		return nil, nil
	}

	scored := make([]*model.ScoredRecord, 0, len(b.records))
	for _, r := range b.records {
		copied := *r
		scored = append(scored, &model.ScoredRecord{
			Record: &copied,
			Score:  cosine(vector, r.Embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit], nil
}

// Drop removes all vectors under the namespace without touching others
func (e *Engine) Drop(ctx context.Context, ns types.Namespace) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.buckets, ns)
	return nil
}

// Stats returns the vector count per namespace
func (e *Engine) Stats(ctx context.Context) (map[types.Namespace]int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	counts := make(map[types.Namespace]int, len(e.buckets))
	for ns, b := range e.buckets {
		counts[ns] = len(b.records)
	}
	return counts, nil
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
