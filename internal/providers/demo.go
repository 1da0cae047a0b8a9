package providers

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// DemoProvider is a keyword-driven provider for running the assistant
// without an API key. It inspects the latest user message and either
// emits a tool call for the fixed roster or a short canned reply.
type DemoProvider struct{}

// NewDemoProvider creates an offline demo provider.
func NewDemoProvider() *DemoProvider { return &DemoProvider{} }

func (p *DemoProvider) Name() string { return "demo" }

var tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// demoQuotes seeds deterministic prices for the offline mode.
var demoQuotes = map[string]models.Stock{
	"AAPL": {Symbol: "AAPL", Price: 187.32, Delta: 1.45},
	"MSFT": {Symbol: "MSFT", Price: 412.08, Delta: -2.31},
	"GOOG": {Symbol: "GOOG", Price: 156.77, Delta: 0.92},
	"DOGE": {Symbol: "DOGE", Price: 0.12, Delta: 0.01},
}

func (p *DemoProvider) Complete(ctx context.Context, req *chat.CompletionRequest) (<-chan *chat.CompletionChunk, error) {
	chunks := make(chan *chat.CompletionChunk)
	go func() {
		defer close(chunks)
		for _, chunk := range p.respond(lastUserMessage(req.Messages)) {
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return chunks, nil
}

func (p *DemoProvider) respond(input string) []*chat.CompletionChunk {
	lower := strings.ToLower(input)
	symbol := firstTicker(input)

	switch {
	case strings.Contains(lower, "buy") || strings.Contains(lower, "purchase"):
		quote := quoteFor(symbol)
		return toolChunk(chat.ToolShowStockPurchase, map[string]any{
			"symbol": quote.Symbol,
			"price":  quote.Price,
		})
	case strings.Contains(lower, "event") || strings.Contains(lower, "news"):
		return toolChunk(chat.ToolGetEvents, map[string]any{
			"events": []map[string]any{
				{"date": "2026-09-15", "headline": "Earnings call", "description": "Quarterly earnings call for " + quoteFor(symbol).Symbol + "."},
				{"date": "2026-10-02", "headline": "Product launch", "description": "New product lineup announcement."},
			},
		})
	case strings.Contains(lower, "price") || symbol != "":
		quote := quoteFor(symbol)
		return toolChunk(chat.ToolShowStockPrice, map[string]any{
			"symbol": quote.Symbol,
			"price":  quote.Price,
			"delta":  quote.Delta,
		})
	case strings.Contains(lower, "stock") || strings.Contains(lower, "trend"):
		stocks := []models.Stock{demoQuotes["AAPL"], demoQuotes["MSFT"], demoQuotes["GOOG"]}
		return toolChunk(chat.ToolListStocks, map[string]any{"stocks": stocks})
	default:
		return textChunks("This is a demonstration of a text-based stock assistant. ",
			"Try asking for trending stocks, a stock price, or to buy some shares.")
	}
}

func lastUserMessage(messages []chat.CompletionMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func firstTicker(input string) string {
	for _, match := range tickerPattern.FindAllString(input, -1) {
		if _, ok := demoQuotes[match]; ok {
			return match
		}
	}
	return tickerPattern.FindString(input)
}

func quoteFor(symbol string) models.Stock {
	if quote, ok := demoQuotes[symbol]; ok {
		return quote
	}
	if symbol == "" {
		return demoQuotes["AAPL"]
	}
	return models.Stock{Symbol: symbol, Price: 100, Delta: 0.5}
}

func toolChunk(name string, args any) []*chat.CompletionChunk {
	input, _ := json.Marshal(args)
	return []*chat.CompletionChunk{{ToolCall: &chat.ToolCall{ID: name + "-demo", Name: name, Input: input}}}
}

func textChunks(deltas ...string) []*chat.CompletionChunk {
	out := make([]*chat.CompletionChunk, 0, len(deltas)+1)
	for _, delta := range deltas {
		out = append(out, &chat.CompletionChunk{Text: delta})
	}
	return append(out, &chat.CompletionChunk{Done: true})
}
