package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AIDentistry/nicolette-chatbot/internal/auth"
	"github.com/AIDentistry/nicolette-chatbot/internal/observability"
	"github.com/AIDentistry/nicolette-chatbot/internal/storage"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// maxTitleLength bounds the derived chat title.
const maxTitleLength = 100

// State is the durable-state store for one conversation: the authoritative
// ordered message log, mutated through a stage-then-commit protocol.
//
// All commits for a conversation are serialized by a single per-State lock.
// Detached tasks (purchase confirmations) write back through the same lock
// via Mutate, applying their patch against the freshest state, so a late
// confirmation cannot clobber a commit made by a later ordinary turn.
type State struct {
	mu      sync.Mutex
	chat    models.Chat
	store   storage.ChatStore
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewState creates durable state for a fresh conversation. store may be nil
// when persistence is not wired (nothing is saved; the in-memory log still
// advances).
func NewState(store storage.ChatStore, logger *observability.Logger, metrics *observability.Metrics) *State {
	return NewStateFrom(models.Chat{ID: uuid.NewString()}, store, logger, metrics)
}

// NewStateFrom resumes durable state from a previously persisted chat.
func NewStateFrom(chat models.Chat, store storage.ChatStore, logger *observability.Logger, metrics *observability.Metrics) *State {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &State{
		chat:    chat.Clone(),
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// ChatID returns the stable conversation identifier.
func (s *State) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat.ID
}

// Get returns a snapshot of the current staged-plus-committed state.
func (s *State) Get() models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat.Clone()
}

// Stage applies fn to the freshest state under the commit lock without
// persisting. The staged state is visible to subsequent Get calls; it
// reaches the persistence collaborator with the turn's eventual Mutate.
// Returns a snapshot of the staged result.
func (s *State) Stage(fn func(*models.Chat)) models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.chat.Clone()
	fn(&next)
	s.chat = next
	return next.Clone()
}

// Mutate applies fn to the freshest state under the commit lock, then
// persists the result. Every durable write goes through here: turn
// finalization and the write-backs of detached tasks alike, so a patch is
// always applied against the state left by whichever write landed last.
// Without an authenticated session on ctx the persistence step is silently
// skipped: logged-out users do not persist history.
func (s *State) Mutate(ctx context.Context, fn func(*models.Chat)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.chat.Clone()
	fn(&next)
	s.chat = next
	return s.persistLocked(ctx)
}

func (s *State) persistLocked(ctx context.Context) error {
	session, ok := auth.SessionFromContext(ctx)
	if !ok || session == nil {
		s.metrics.ObserveCommit("skipped")
		return nil
	}
	if s.store == nil {
		s.metrics.ObserveCommit("skipped")
		return nil
	}

	s.chat.UserID = session.UserID
	if s.chat.CreatedAt.IsZero() {
		s.chat.CreatedAt = time.Now()
	}
	if len(s.chat.Messages) > 0 {
		s.chat.Title = deriveTitle(s.chat.Messages[0].Content)
	}
	s.chat.Path = "/chat/" + s.chat.ID

	snapshot := s.chat.Clone()
	if err := s.store.Save(ctx, &snapshot); err != nil {
		s.metrics.ObserveCommit("error")
		return fmt.Errorf("persist chat %s: %w", s.chat.ID, err)
	}
	s.metrics.ObserveCommit("yes")
	return nil
}

func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > maxTitleLength {
		runes = runes[:maxTitleLength]
	}
	return string(runes)
}
