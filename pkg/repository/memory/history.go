package memory

import (
	"context"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

type historyRepository struct {
	store *Store
}

func copyMessage(m *model.ChatMessage) *model.ChatMessage {
	copied := *m
	return &copied
}

func (r *historyRepository) Append(ctx context.Context, sid types.SessionID, msg *model.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	stored := copyMessage(msg)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.store.now()
	}
	data.history = append(data.history, stored)
	return nil
}

func (r *historyRepository) List(ctx context.Context, sid types.SessionID) ([]*model.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.session(sid)
	messages := make([]*model.ChatMessage, 0, len(data.history))
	for _, m := range data.history {
		messages = append(messages, copyMessage(m))
	}
	return messages, nil
}
