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

// ListStocksTool shows a list of trending stocks.
type ListStocksTool struct {
	delay time.Duration
}

// NewListStocksTool returns the list_stocks handler. A negative delay
// selects the default simulated latency.
func NewListStocksTool(delay time.Duration) *ListStocksTool {
	return &ListStocksTool{delay: normalizeDelay(delay)}
}

func (t *ListStocksTool) Name() string { return chat.ToolListStocks }

func (t *ListStocksTool) Description() string {
	return "List three imaginary stocks that are trending."
}

func (t *ListStocksTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"stocks": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"symbol": {"type": "string", "description": "The symbol of the stock"},
						"price": {"type": "number", "description": "The price of the stock"},
						"delta": {"type": "number", "description": "The change in price of the stock"}
					},
					"required": ["symbol", "price", "delta"]
				}
			}
		},
		"required": ["stocks"]
	}`)
}

func (t *ListStocksTool) Generate(ctx context.Context, turn *chat.Turn, params json.RawMessage) (ui.Node, error) {
	var input struct {
		Stocks []models.Stock `json:"stocks"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("decode list_stocks params: %w", err)
	}

	turn.Yield(ui.Card{Child: ui.Skeleton{For: t.Name()}})

	sleep(ctx, t.delay)

	content, err := json.Marshal(input.Stocks)
	if err != nil {
		return nil, fmt.Errorf("encode list_stocks result: %w", err)
	}
	if err := turn.Append(ctx, functionMessage(t.Name(), string(content))); err != nil {
		return nil, err
	}

	return ui.Card{Child: ui.StocksView{Stocks: input.Stocks}}, nil
}

func (t *ListStocksTool) Render(content []byte) (ui.Node, error) {
	var stocks []models.Stock
	if err := json.Unmarshal(content, &stocks); err != nil {
		return nil, fmt.Errorf("decode stored list_stocks result: %w", err)
	}
	return ui.Card{Child: ui.StocksView{Stocks: stocks}}, nil
}
