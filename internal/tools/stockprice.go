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

// StockPriceTool shows the current price of a single stock or currency.
type StockPriceTool struct {
	delay time.Duration
}

// NewStockPriceTool returns the show_stock_price handler. A negative delay
// selects the default simulated latency.
func NewStockPriceTool(delay time.Duration) *StockPriceTool {
	return &StockPriceTool{delay: normalizeDelay(delay)}
}

func (t *StockPriceTool) Name() string { return chat.ToolShowStockPrice }

func (t *StockPriceTool) Description() string {
	return "Get the current stock price of a given stock or currency. Use this to show the price to the user."
}

func (t *StockPriceTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"symbol": {"type": "string", "description": "The name or symbol of the stock or currency. e.g. DOGE/AAPL/USD."},
			"price": {"type": "number", "description": "The price of the stock."},
			"delta": {"type": "number", "description": "The change in price of the stock"}
		},
		"required": ["symbol", "price", "delta"]
	}`)
}

func (t *StockPriceTool) Generate(ctx context.Context, turn *chat.Turn, params json.RawMessage) (ui.Node, error) {
	var stock models.Stock
	if err := json.Unmarshal(params, &stock); err != nil {
		return nil, fmt.Errorf("decode show_stock_price params: %w", err)
	}

	turn.Yield(ui.Card{Child: ui.Skeleton{For: t.Name()}})

	sleep(ctx, t.delay)

	content, err := json.Marshal(stock)
	if err != nil {
		return nil, fmt.Errorf("encode show_stock_price result: %w", err)
	}
	if err := turn.Append(ctx, functionMessage(t.Name(), string(content))); err != nil {
		return nil, err
	}

	return ui.Card{Child: ui.StockView{Stock: stock}}, nil
}

func (t *StockPriceTool) Render(content []byte) (ui.Node, error) {
	var stock models.Stock
	if err := json.Unmarshal(content, &stock); err != nil {
		return nil, fmt.Errorf("decode stored show_stock_price result: %w", err)
	}
	return ui.Card{Child: ui.StockView{Stock: stock}}, nil
}
