package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat"
	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

const (
	// defaultShares is used when the model omits numberOfShares.
	defaultShares = 100

	// maxShares is the inclusive upper bound on a single ticket.
	maxShares = 1000
)

// StockPurchaseTool raises a purchase ticket the user can confirm later via
// the detached confirmation action.
type StockPurchaseTool struct {
	delay time.Duration
}

// NewStockPurchaseTool returns the show_stock_purchase handler. A negative
// delay selects the default simulated latency.
func NewStockPurchaseTool(delay time.Duration) *StockPurchaseTool {
	return &StockPurchaseTool{delay: normalizeDelay(delay)}
}

func (t *StockPurchaseTool) Name() string { return chat.ToolShowStockPurchase }

func (t *StockPurchaseTool) Description() string {
	return "Show price and the UI to purchase a stock or currency. Use this if the user wants to purchase a stock or currency."
}

func (t *StockPurchaseTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"symbol": {"type": "string", "description": "The name or symbol of the stock or currency. e.g. DOGE/AAPL/USD."},
			"price": {"type": "number", "description": "The price of the stock."},
			"numberOfShares": {"type": "number", "description": "The **number of shares** for a stock or currency to purchase. Can be optional if the user did not specify it."}
		},
		"required": ["symbol", "price"]
	}`)
}

func (t *StockPurchaseTool) Generate(ctx context.Context, turn *chat.Turn, params json.RawMessage) (ui.Node, error) {
	var input struct {
		Symbol         string   `json:"symbol"`
		Price          float64  `json:"price"`
		NumberOfShares *float64 `json:"numberOfShares"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("decode show_stock_purchase params: %w", err)
	}

	shares := float64(defaultShares)
	if input.NumberOfShares != nil {
		shares = *input.NumberOfShares
	}

	// An out-of-range quantity is a modeled outcome, not a fault: log it
	// for the model and render a plain refusal.
	if shares <= 0 || shares > maxShares {
		if err := turn.Append(ctx, systemMessage("[User has selected an invalid amount]")); err != nil {
			return nil, err
		}
		return ui.BotText{Content: "Invalid amount"}, nil
	}

	turn.Yield(ui.Card{Child: ui.Skeleton{For: t.Name()}})

	sleep(ctx, t.delay)

	ticket := models.Purchase{
		Symbol:         input.Symbol,
		Price:          input.Price,
		NumberOfShares: shares,
	}
	content, err := json.Marshal(ticket)
	if err != nil {
		return nil, fmt.Errorf("encode show_stock_purchase result: %w", err)
	}
	if err := turn.Append(ctx, functionMessage(t.Name(), string(content))); err != nil {
		return nil, err
	}

	ticket.Status = models.PurchaseRequiresAction
	return ui.Card{Child: ui.PurchaseView{Purchase: ticket}}, nil
}

func (t *StockPurchaseTool) Render(content []byte) (ui.Node, error) {
	var ticket models.Purchase
	if err := json.Unmarshal(content, &ticket); err != nil {
		return nil, fmt.Errorf("decode stored show_stock_purchase result: %w", err)
	}
	if ticket.Status == "" {
		ticket.Status = models.PurchaseRequiresAction
	}
	return ui.Card{Child: ui.PurchaseView{Purchase: ticket}}, nil
}
