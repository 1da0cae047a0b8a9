// Package storage provides the persistence collaborator for durable chat
// state. The orchestration core hands it fully-formed chats at each commit;
// it never reaches back into live state.
package storage

import (
	"context"
	"errors"

	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

var (
	ErrNotFound = errors.New("not found")
)

// ChatStore persists committed chats.
type ChatStore interface {
	// Save upserts a chat snapshot. Called once per committed turn.
	Save(ctx context.Context, chat *models.Chat) error

	// Get returns a chat by id.
	Get(ctx context.Context, id string) (*models.Chat, error)

	// List returns a user's chats, most recent first.
	List(ctx context.Context, userID string) ([]*models.Chat, error)

	// Delete removes a chat. The orchestration core never calls this;
	// it exists for the surrounding application.
	Delete(ctx context.Context, id string) error
}
