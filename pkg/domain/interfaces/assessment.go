package interfaces

import (
	"context"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// AssessmentRepository defines per-session assessment and result persistence
type AssessmentRepository interface {
	// Create assigns the next monotonic assessment ID and stores the run.
	// Both referenced documents must be live in the same session.
	Create(ctx context.Context, sid types.SessionID, assessment *model.Assessment) (*model.Assessment, error)

	// Get retrieves an assessment by ID
	Get(ctx context.Context, sid types.SessionID, id int64) (*model.Assessment, error)

	// ListByDocument retrieves assessments referencing the document as either
	// customer or regulation side
	ListByDocument(ctx context.Context, sid types.SessionID, docID int64) ([]*model.Assessment, error)

	// Delete removes an assessment, cascading to its results
	Delete(ctx context.Context, sid types.SessionID, id int64) error

	// AddResult assigns the next monotonic result ID and stores the result
	AddResult(ctx context.Context, sid types.SessionID, result *model.AssessmentResult) (*model.AssessmentResult, error)

	// ListResults retrieves all results of an assessment ordered by ID
	ListResults(ctx context.Context, sid types.SessionID, assessmentID int64) ([]*model.AssessmentResult, error)
}
