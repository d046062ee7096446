package interfaces

import (
	"context"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// DocumentRepository defines per-session document persistence
type DocumentRepository interface {
	// Create assigns the next monotonic document ID and stores the document
	Create(ctx context.Context, sid types.SessionID, doc *model.Document) (*model.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, sid types.SessionID, id int64) (*model.Document, error)

	// List retrieves all documents of the session ordered by ID
	List(ctx context.Context, sid types.SessionID) ([]*model.Document, error)

	// UpdateType changes the document's classification
	UpdateType(ctx context.Context, sid types.SessionID, id int64, docType types.DocType) error

	// Delete removes the document, cascading to its clauses, to assessments
	// referencing it, and to those assessments' results
	Delete(ctx context.Context, sid types.SessionID, id int64) error
}
