package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/utils/logging"
)

// Reset clears a session's vector namespace and in-memory state together.
// The namespace goes first: a session left in the store without vectors
// degrades to empty retrieval, while orphaned vectors would leak.
func (uc *UseCases) Reset(ctx context.Context, sid types.SessionID) error {
	sid = sid.Normalize()

	if err := uc.index.Clear(ctx, types.SessionNamespace(sid)); err != nil {
		return goerr.Wrap(err, "failed to clear vector namespace", goerr.V("session_id", sid))
	}
	if err := uc.repo.Purge(ctx, sid); err != nil {
		return goerr.Wrap(err, "failed to purge session", goerr.V("session_id", sid))
	}

	logging.From(ctx).Info("session reset", "session_id", sid)
	return nil
}
