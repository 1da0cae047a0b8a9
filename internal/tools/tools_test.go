package tools_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat"
	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
	"github.com/AIDentistry/nicolette-chatbot/internal/providers"
	"github.com/AIDentistry/nicolette-chatbot/internal/tools"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// newTestEngine builds an engine over the full roster with no simulated
// latency and a provider that replays the given responses.
func newTestEngine(t *testing.T, responses ...providers.ScriptedResponse) *chat.Engine {
	t.Helper()
	registry := chat.NewRegistry()
	if err := tools.RegisterAll(registry, 0); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	provider := providers.NewScriptedProvider(responses...)
	return chat.NewEngine(provider, registry, chat.NewState(nil, nil, nil), chat.Options{})
}

func runTurn(t *testing.T, engine *chat.Engine, input string) ui.Node {
	t.Helper()
	item, err := engine.SubmitUserMessage(context.Background(), input)
	if err != nil {
		t.Fatalf("SubmitUserMessage: %v", err)
	}
	stream, ok := item.Node.(*chat.UIStream)
	if !ok {
		return item.Node
	}
	select {
	case <-stream.Wait():
	case <-time.After(5 * time.Second):
		t.Fatal("turn did not settle")
	}
	return stream.Value()
}

func waitForMessages(t *testing.T, engine *chat.Engine, n int) []models.Message {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := engine.State().Get().Messages; len(msgs) >= n {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}
	msgs := engine.State().Get().Messages
	t.Fatalf("log never reached %d messages (have %d)", n, len(msgs))
	return nil
}

func TestShowStockPrice(t *testing.T) {
	engine := newTestEngine(t, providers.ToolCallResponse(chat.ToolShowStockPrice, map[string]any{
		"symbol": "AAPL", "price": 150, "delta": 2,
	}))

	node := runTurn(t, engine, "what is AAPL trading at?")
	card, ok := node.(ui.Card)
	if !ok {
		t.Fatalf("node = %T, want ui.Card", node)
	}
	view := card.Child.(ui.StockView)
	if view.Stock.Symbol != "AAPL" || view.Stock.Price != 150 || view.Stock.Delta != 2 {
		t.Errorf("stock = %+v", view.Stock)
	}

	msgs := waitForMessages(t, engine, 2)
	fn := msgs[1]
	if fn.Role != models.RoleFunction || fn.Name != chat.ToolShowStockPrice {
		t.Fatalf("second message = %s/%s", fn.Role, fn.Name)
	}
	if want := `{"symbol":"AAPL","price":150,"delta":2}`; fn.Content != want {
		t.Errorf("function content = %s, want %s", fn.Content, want)
	}
}

func TestListStocks(t *testing.T) {
	engine := newTestEngine(t, providers.ToolCallResponse(chat.ToolListStocks, map[string]any{
		"stocks": []map[string]any{
			{"symbol": "AAPL", "price": 150, "delta": 2},
			{"symbol": "MSFT", "price": 400, "delta": -1.5},
			{"symbol": "GOOG", "price": 120, "delta": 0.3},
		},
	}))

	node := runTurn(t, engine, "what are the trending stocks?")
	view := node.(ui.Card).Child.(ui.StocksView)
	if len(view.Stocks) != 3 {
		t.Fatalf("stocks = %d, want 3", len(view.Stocks))
	}

	msgs := waitForMessages(t, engine, 2)
	var stored []models.Stock
	if err := json.Unmarshal([]byte(msgs[1].Content), &stored); err != nil {
		t.Fatalf("decode function content: %v", err)
	}
	if len(stored) != 3 || stored[0].Symbol != "AAPL" {
		t.Errorf("stored stocks = %+v", stored)
	}
}

func TestGetEvents(t *testing.T) {
	engine := newTestEngine(t, providers.ToolCallResponse(chat.ToolGetEvents, map[string]any{
		"events": []map[string]any{
			{"date": "2024-03-01", "headline": "Shares soar", "description": "A good day."},
		},
	}))

	node := runTurn(t, engine, "what happened in March?")
	view := node.(ui.Card).Child.(ui.EventsView)
	if len(view.Events) != 1 || view.Events[0].Headline != "Shares soar" {
		t.Fatalf("events = %+v", view.Events)
	}

	waitForMessages(t, engine, 2)
}

func TestShowStockPurchaseDefaultsShares(t *testing.T) {
	engine := newTestEngine(t, providers.ToolCallResponse(chat.ToolShowStockPurchase, map[string]any{
		"symbol": "AAPL", "price": 150,
	}))

	node := runTurn(t, engine, "buy some AAPL")
	view := node.(ui.Card).Child.(ui.PurchaseView)
	if view.Purchase.NumberOfShares != 100 {
		t.Errorf("shares = %v, want default 100", view.Purchase.NumberOfShares)
	}
	if view.Purchase.Status != models.PurchaseRequiresAction {
		t.Errorf("status = %q, want requires_action", view.Purchase.Status)
	}

	// The committed ticket carries no status yet.
	msgs := waitForMessages(t, engine, 2)
	var ticket models.Purchase
	if err := json.Unmarshal([]byte(msgs[1].Content), &ticket); err != nil {
		t.Fatalf("decode ticket: %v", err)
	}
	if ticket.Status != "" {
		t.Errorf("committed status = %q, want empty", ticket.Status)
	}
}

func TestShowStockPurchaseQuantityBounds(t *testing.T) {
	cases := []struct {
		name   string
		shares float64
		valid  bool
	}{
		{"zero", 0, false},
		{"negative", -5, false},
		{"one", 1, true},
		{"fractional", 0.5, true},
		{"upper bound", 1000, true},
		{"above bound", 1001, false},
		{"fractional above bound", 1000.5, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(t, providers.ToolCallResponse(chat.ToolShowStockPurchase, map[string]any{
				"symbol": "AAPL", "price": 150, "numberOfShares": tc.shares,
			}))

			node := runTurn(t, engine, "buy AAPL")

			if tc.valid {
				view := node.(ui.Card).Child.(ui.PurchaseView)
				if view.Purchase.NumberOfShares != tc.shares {
					t.Errorf("shares = %v, want %v", view.Purchase.NumberOfShares, tc.shares)
				}
				msgs := waitForMessages(t, engine, 2)
				if msgs[1].Role != models.RoleFunction {
					t.Errorf("expected function message, got %s", msgs[1].Role)
				}
				return
			}

			text, ok := node.(ui.BotText)
			if !ok {
				t.Fatalf("node = %T, want ui.BotText refusal", node)
			}
			if text.Content != "Invalid amount" {
				t.Errorf("content = %q", text.Content)
			}
			msgs := waitForMessages(t, engine, 2)
			last := msgs[len(msgs)-1]
			if last.Role != models.RoleSystem || last.Content != "[User has selected an invalid amount]" {
				t.Errorf("log entry = %s %q", last.Role, last.Content)
			}
		})
	}
}

func TestHandlersRenderStoredContent(t *testing.T) {
	registry := chat.NewRegistry()
	if err := tools.RegisterAll(registry, 0); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	cases := []struct {
		tool    string
		content string
		check   func(t *testing.T, node ui.Node)
	}{
		{
			tool:    chat.ToolShowStockPrice,
			content: `{"symbol":"AAPL","price":150,"delta":2}`,
			check: func(t *testing.T, node ui.Node) {
				view := node.(ui.Card).Child.(ui.StockView)
				if view.Stock.Symbol != "AAPL" {
					t.Errorf("symbol = %q", view.Stock.Symbol)
				}
			},
		},
		{
			tool:    chat.ToolListStocks,
			content: `[{"symbol":"AAPL","price":150,"delta":2}]`,
			check: func(t *testing.T, node ui.Node) {
				view := node.(ui.Card).Child.(ui.StocksView)
				if len(view.Stocks) != 1 {
					t.Errorf("stocks = %d", len(view.Stocks))
				}
			},
		},
		{
			tool:    chat.ToolShowStockPurchase,
			content: `{"symbol":"AAPL","price":150,"numberOfShares":10,"status":"completed"}`,
			check: func(t *testing.T, node ui.Node) {
				view := node.(ui.Card).Child.(ui.PurchaseView)
				if view.Purchase.Status != models.PurchaseCompleted {
					t.Errorf("status = %q", view.Purchase.Status)
				}
			},
		},
		{
			tool:    chat.ToolGetEvents,
			content: `[{"date":"2024-03-01","headline":"h","description":"d"}]`,
			check: func(t *testing.T, node ui.Node) {
				view := node.(ui.Card).Child.(ui.EventsView)
				if len(view.Events) != 1 {
					t.Errorf("events = %d", len(view.Events))
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.tool, func(t *testing.T) {
			handler, ok := registry.Get(tc.tool)
			if !ok {
				t.Fatalf("tool %s not registered", tc.tool)
			}
			node, err := handler.Render([]byte(tc.content))
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			tc.check(t, node)
		})
	}
}

func TestPendingTicketRendersAsActionable(t *testing.T) {
	registry := chat.NewRegistry()
	if err := tools.RegisterAll(registry, 0); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	handler, _ := registry.Get(chat.ToolShowStockPurchase)

	node, err := handler.Render([]byte(`{"symbol":"AAPL","price":150,"numberOfShares":10}`))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	view := node.(ui.Card).Child.(ui.PurchaseView)
	if view.Purchase.Status != models.PurchaseRequiresAction {
		t.Errorf("status = %q, want requires_action", view.Purchase.Status)
	}
}
