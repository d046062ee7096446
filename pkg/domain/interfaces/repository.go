package interfaces

import (
	"context"
	"time"

	"github.com/skyelectric/reglens/pkg/domain/types"
)

// SessionInfo is a point-in-time view of one session's activity, used by the
// eviction sweep
type SessionInfo struct {
	ID           types.SessionID
	LastActivity time.Time
}

// Repository defines the interface for per-session data access. Every
// operation on a sub-repository touches the owning session's activity
// timestamp.
type Repository interface {
	Document() DocumentRepository
	Clause() ClauseRepository
	Assessment() AssessmentRepository
	History() HistoryRepository

	// Sessions returns activity info for all live sessions
	Sessions(ctx context.Context) ([]SessionInfo, error)

	// Purge removes a session and every entity it owns as one atomic step.
	// Purging an unknown session is a no-op.
	Purge(ctx context.Context, id types.SessionID) error
}
