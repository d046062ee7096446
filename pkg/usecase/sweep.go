package usecase

import (
	"context"
	"time"

	"github.com/skyelectric/reglens/pkg/domain/interfaces"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/utils/errutil"
	"github.com/skyelectric/reglens/pkg/utils/logging"
)

// ExpiredSessions returns the sessions whose inactivity exceeds the TTL.
// Pure over its inputs so eviction policy is testable without timers.
func ExpiredSessions(now time.Time, ttl time.Duration, sessions []interfaces.SessionInfo) []types.SessionID {
	var expired []types.SessionID
	for _, s := range sessions {
		if now.Sub(s.LastActivity) > ttl {
			expired = append(expired, s.ID)
		}
	}
	return expired
}

// SweepOnce runs one eviction pass: every session idle past the TTL loses
// its vector namespace and in-memory state together. A failed eviction is
// logged and retried on the next pass.
func (uc *UseCases) SweepOnce(ctx context.Context) {
	sessions, err := uc.repo.Sessions(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to snapshot sessions")
		return
	}

	for _, sid := range ExpiredSessions(uc.now(), uc.cfg.SessionTTL, sessions) {
		logging.From(ctx).Info("evicting inactive session", "session_id", sid)
		if err := uc.Reset(ctx, sid); err != nil {
			_ = errutil.Handle(ctx, err, "session eviction failed")
		}
	}
}

// RunSweeper runs the eviction sweep on the configured interval until the
// context is cancelled
func (uc *UseCases) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(uc.cfg.SweepInterval)
	defer ticker.Stop()

	logging.From(ctx).Info("session sweeper started",
		"interval", uc.cfg.SweepInterval,
		"ttl", uc.cfg.SessionTTL,
	)
	for {
		select {
		case <-ctx.Done():
			logging.From(ctx).Info("session sweeper stopped")
			return
		case <-ticker.C:
			uc.SweepOnce(ctx)
		}
	}
}
