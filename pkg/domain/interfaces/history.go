package interfaces

import (
	"context"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// HistoryRepository defines per-session conversation history persistence
type HistoryRepository interface {
	// Append adds a message to the end of the session's history
	Append(ctx context.Context, sid types.SessionID, msg *model.ChatMessage) error

	// List retrieves the full history in insertion order
	List(ctx context.Context, sid types.SessionID) ([]*model.ChatMessage, error)
}
