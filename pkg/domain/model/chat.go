package model

import (
	"time"

	"github.com/skyelectric/reglens/pkg/domain/types"
)

// ChatMessage is one turn of a session's conversation history
type ChatMessage struct {
	Role      types.ChatRole
	Content   string
	CreatedAt time.Time
}
