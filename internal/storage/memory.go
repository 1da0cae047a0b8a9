package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// MemoryStore provides an in-memory ChatStore for testing and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	chats map[string]*models.Chat
}

// NewMemoryStore creates a new in-memory chat store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chats: map[string]*models.Chat{}}
}

func (m *MemoryStore) Save(ctx context.Context, chat *models.Chat) error {
	if chat == nil || chat.ID == "" {
		return errors.New("chat with id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := chat.Clone()
	m.chats[chat.ID] = &clone
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chat, ok := m.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := chat.Clone()
	return &clone, nil
}

func (m *MemoryStore) List(ctx context.Context, userID string) ([]*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Chat, 0)
	for _, chat := range m.chats {
		if chat.UserID != userID {
			continue
		}
		clone := chat.Clone()
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chats[id]; !ok {
		return ErrNotFound
	}
	delete(m.chats, id)
	return nil
}
