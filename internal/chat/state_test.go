package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/AIDentistry/nicolette-chatbot/internal/auth"
	"github.com/AIDentistry/nicolette-chatbot/internal/storage"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

func sessionContext(userID string) context.Context {
	return auth.WithSession(context.Background(), &auth.Session{UserID: userID})
}

func appendMessages(msgs ...models.Message) func(*models.Chat) {
	return func(chat *models.Chat) {
		chat.Messages = append(chat.Messages, msgs...)
	}
}

func TestStateMutatePersistsWithSession(t *testing.T) {
	store := storage.NewMemoryStore()
	state := NewState(store, nil, nil)
	ctx := sessionContext("user-1")

	err := state.Mutate(ctx, appendMessages(
		models.Message{ID: "m1", Role: models.RoleUser, Content: "show me trending stocks"},
		models.Message{ID: "m2", Role: models.RoleAssistant, Content: "Here you go."},
	))
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	saved, err := store.Get(ctx, state.ChatID())
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	if saved.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", saved.UserID)
	}
	if saved.Title != "show me trending stocks" {
		t.Errorf("Title = %q", saved.Title)
	}
	if want := "/chat/" + state.ChatID(); saved.Path != want {
		t.Errorf("Path = %q, want %q", saved.Path, want)
	}
	if saved.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if len(saved.Messages) != 2 {
		t.Errorf("persisted %d messages, want 2", len(saved.Messages))
	}
}

func TestStateMutateSkipsPersistenceWithoutSession(t *testing.T) {
	store := storage.NewMemoryStore()
	state := NewState(store, nil, nil)

	err := state.Mutate(context.Background(), appendMessages(
		models.Message{ID: "m1", Role: models.RoleUser, Content: "hello"}))
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	// The in-memory log advances but nothing is saved.
	if got := len(state.Get().Messages); got != 1 {
		t.Fatalf("in-memory messages = %d, want 1", got)
	}
	if _, err := store.Get(context.Background(), state.ChatID()); err != storage.ErrNotFound {
		t.Fatalf("store.Get = %v, want ErrNotFound", err)
	}
}

func TestStateTitleTruncation(t *testing.T) {
	store := storage.NewMemoryStore()
	state := NewState(store, nil, nil)
	ctx := sessionContext("user-1")

	long := strings.Repeat("x", 240)
	err := state.Mutate(ctx, appendMessages(
		models.Message{ID: "m1", Role: models.RoleUser, Content: long}))
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	saved, err := store.Get(ctx, state.ChatID())
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	if got := len([]rune(saved.Title)); got != maxTitleLength {
		t.Fatalf("title length = %d, want %d", got, maxTitleLength)
	}
}

func TestStateStageDoesNotPersist(t *testing.T) {
	store := storage.NewMemoryStore()
	state := NewState(store, nil, nil)
	ctx := sessionContext("user-1")

	staged := state.Stage(appendMessages(
		models.Message{ID: "m1", Role: models.RoleUser, Content: "draft"}))
	if len(staged.Messages) != 1 {
		t.Fatalf("staged snapshot = %d messages, want 1", len(staged.Messages))
	}

	// Staged state is visible to readers but has not reached the store.
	if got := len(state.Get().Messages); got != 1 {
		t.Fatalf("Get after Stage = %d messages, want 1", got)
	}
	if _, err := store.Get(ctx, state.ChatID()); err != storage.ErrNotFound {
		t.Fatalf("store.Get = %v, want ErrNotFound", err)
	}

	// The staged message rides along with the next Mutate.
	if err := state.Mutate(ctx, func(chat *models.Chat) {}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	saved, err := store.Get(ctx, state.ChatID())
	if err != nil {
		t.Fatalf("store.Get after Mutate: %v", err)
	}
	if len(saved.Messages) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(saved.Messages))
	}
}

func TestStateMutateAppliesAgainstFreshState(t *testing.T) {
	state := NewState(nil, nil, nil)
	ctx := context.Background()

	err := state.Mutate(ctx, appendMessages(
		models.Message{ID: "m1", Role: models.RoleUser, Content: "one"}))
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	// A detached write-back sees the committed message and appends after it.
	err = state.Mutate(ctx, appendMessages(
		models.Message{ID: "m2", Role: models.RoleSystem, Content: "patch"}))
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	msgs := state.Get().Messages
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Fatalf("unexpected order: %q then %q", msgs[0].ID, msgs[1].ID)
	}
}

func TestStateConcurrentWritesAreNotLost(t *testing.T) {
	state := NewState(nil, nil, nil)
	ctx := context.Background()

	// Concurrent writers model a turn finalization racing detached
	// confirmation write-backs: every append must survive, whatever the
	// interleaving.
	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := state.Mutate(ctx, appendMessages(models.Message{
				ID:   fmt.Sprintf("m%d", i),
				Role: models.RoleSystem,
			}))
			if err != nil {
				t.Errorf("Mutate %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(state.Get().Messages); got != writers {
		t.Fatalf("messages = %d, want %d (lost update)", got, writers)
	}
}

func TestStateGetReturnsClone(t *testing.T) {
	state := NewState(nil, nil, nil)

	snap := state.Get()
	snap.Messages = append(snap.Messages,
		models.Message{ID: "m1", Role: models.RoleUser, Content: "mutated copy"})

	if got := len(state.Get().Messages); got != 0 {
		t.Fatalf("state observed caller mutation: %d messages", got)
	}
}
