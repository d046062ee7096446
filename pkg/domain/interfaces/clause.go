package interfaces

import (
	"context"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// ClauseRepository defines per-session clause persistence. Clauses are
// immutable once created.
type ClauseRepository interface {
	// Create assigns the next monotonic clause ID and stores the clause. The
	// referenced document must be live in the same session.
	Create(ctx context.Context, sid types.SessionID, clause *model.Clause) (*model.Clause, error)

	// Get retrieves a clause by ID
	Get(ctx context.Context, sid types.SessionID, id int64) (*model.Clause, error)

	// ListByDocument retrieves all clauses of a document ordered by ID
	ListByDocument(ctx context.Context, sid types.SessionID, docID int64) ([]*model.Clause, error)

	// FindByLabel resolves a clause by its human label within a document
	FindByLabel(ctx context.Context, sid types.SessionID, docID int64, label string) (*model.Clause, error)
}
