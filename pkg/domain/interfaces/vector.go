package interfaces

import (
	"context"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// VectorEngine is the pluggable similarity search backend. Implementations
// that lack native namespaces must simulate isolation by tagging records at
// upsert time and filtering at search time.
type VectorEngine interface {
	// Upsert stores records with embeddings under the namespace. Records with
	// an embedding of the wrong dimension fail with ErrDimensionMismatch.
	Upsert(ctx context.Context, ns types.Namespace, records []*model.VectorRecord) error

	// Search returns up to limit records from the namespace ordered by
	// descending similarity to the query vector
	Search(ctx context.Context, ns types.Namespace, vector []float64, limit int) ([]*model.ScoredRecord, error)

	// Drop deletes all vectors under the namespace without touching others
	Drop(ctx context.Context, ns types.Namespace) error

	// Stats returns the vector count per namespace
	Stats(ctx context.Context) (map[types.Namespace]int, error)
}
