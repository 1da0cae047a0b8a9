package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

func TestUIStateFromChatSkipsSystemMessages(t *testing.T) {
	chat := models.Chat{
		ID: "c1",
		Messages: []models.Message{
			{ID: "s1", Role: models.RoleSystem, Content: "[User has selected an invalid amount]"},
			{ID: "u1", Role: models.RoleUser, Content: "hello"},
		},
	}

	items := UIStateFromChat(chat, NewRegistry())
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].ID != "c1-0" {
		t.Errorf("id = %q, want c1-0", items[0].ID)
	}
	if got := items[0].Node.(ui.UserText).Content; got != "hello" {
		t.Errorf("content = %q", got)
	}
}

func TestUIStateFromChatRendersRoles(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&echoTool{name: "echo"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	chat := models.Chat{
		ID: "c1",
		Messages: []models.Message{
			{ID: "u1", Role: models.RoleUser, Content: "use the tool"},
			{ID: "f1", Role: models.RoleFunction, Name: "echo", Content: `{"value":"hi"}`},
			{ID: "a1", Role: models.RoleAssistant, Content: "done"},
		},
	}

	items := UIStateFromChat(chat, registry)
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if _, ok := items[0].Node.(ui.UserText); !ok {
		t.Errorf("items[0] = %T, want UserText", items[0].Node)
	}
	if _, ok := items[1].Node.(ui.Card); !ok {
		t.Errorf("items[1] = %T, want Card", items[1].Node)
	}
	if _, ok := items[2].Node.(ui.BotText); !ok {
		t.Errorf("items[2] = %T, want BotText", items[2].Node)
	}
}

func TestUIStateFromChatDropsUnknownToolButKeepsIndex(t *testing.T) {
	chat := models.Chat{
		ID: "c1",
		Messages: []models.Message{
			{ID: "u1", Role: models.RoleUser, Content: "hi"},
			{ID: "f1", Role: models.RoleFunction, Name: "retired_tool", Content: `{}`},
			{ID: "a1", Role: models.RoleAssistant, Content: "ok"},
		},
	}

	items := UIStateFromChat(chat, NewRegistry())
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	// The dropped message still consumes an index slot.
	if items[0].ID != "c1-0" || items[1].ID != "c1-2" {
		t.Fatalf("ids = %q, %q, want c1-0, c1-2", items[0].ID, items[1].ID)
	}
}

func TestUIStateFromChatIsDeterministic(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&echoTool{name: "echo"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	chat := models.Chat{ID: "c1"}
	for i := 0; i < 5; i++ {
		chat.Messages = append(chat.Messages, models.Message{
			ID: fmt.Sprintf("m%d", i), Role: models.RoleUser, Content: fmt.Sprintf("msg %d", i),
		})
	}

	first := UIStateFromChat(chat, registry)
	second := UIStateFromChat(chat, registry)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("projection is not deterministic")
	}
}

func TestUIStateFromChatCompletedPurchase(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&purchaseRenderTool{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	completed, _ := json.Marshal(models.Purchase{
		Symbol: "AAPL", Price: 150, NumberOfShares: 10, Status: models.PurchaseCompleted,
	})
	chat := models.Chat{
		ID: "c1",
		Messages: []models.Message{
			{ID: "f1", Role: models.RoleFunction, Name: ToolShowStockPurchase, Content: string(completed)},
		},
	}

	items := UIStateFromChat(chat, registry)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	view := items[0].Node.(ui.PurchaseView)
	if view.Purchase.Status != models.PurchaseCompleted {
		t.Errorf("status = %q, want completed", view.Purchase.Status)
	}
}

func TestRehydrateRequiresSession(t *testing.T) {
	engine := NewEngine(&fakeProvider{}, NewRegistry(), NewState(nil, nil, nil), Options{})

	items, err := engine.Rehydrate(context.Background())
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if items != nil {
		t.Fatalf("items = %v, want nil for logged-out caller", items)
	}

	if _, err := engine.Rehydrate(sessionContext("user-1")); err != nil {
		t.Fatalf("Rehydrate with session: %v", err)
	}
}

// purchaseRenderTool only implements the rehydration side of the purchase
// ticket.
type purchaseRenderTool struct{}

func (purchaseRenderTool) Name() string            { return ToolShowStockPurchase }
func (purchaseRenderTool) Description() string     { return "purchase" }
func (purchaseRenderTool) Schema() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }

func (purchaseRenderTool) Generate(ctx context.Context, turn *Turn, params json.RawMessage) (ui.Node, error) {
	return nil, fmt.Errorf("not used")
}

func (purchaseRenderTool) Render(content []byte) (ui.Node, error) {
	var ticket models.Purchase
	if err := json.Unmarshal(content, &ticket); err != nil {
		return nil, err
	}
	return ui.PurchaseView{Purchase: ticket}, nil
}
