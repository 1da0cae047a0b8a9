// Package tools implements the fixed tool roster of the finance assistant:
// listing trending stocks, showing a price, raising a purchase ticket, and
// listing market events.
//
// Every handler follows the same three-phase shape: yield a skeleton
// placeholder, wait out a bounded lookup latency, then commit its
// function-role message to durable state and return the final node.
// Deployments replace the simulated latency with a real market-data fetch.
package tools

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// RegisterAll registers the complete roster on the given registry with the
// same simulated latency for every handler.
func RegisterAll(registry *chat.Registry, delay time.Duration) error {
	handlers := []chat.Handler{
		NewListStocksTool(delay),
		NewStockPriceTool(delay),
		NewStockPurchaseTool(delay),
		NewEventsTool(delay),
	}
	for _, h := range handlers {
		if err := registry.Register(h); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDelay is the simulated lookup latency used when a handler is
// constructed with a negative delay.
const DefaultDelay = time.Second

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func normalizeDelay(d time.Duration) time.Duration {
	if d < 0 {
		return DefaultDelay
	}
	return d
}

func functionMessage(name, content string) models.Message {
	return models.Message{
		ID:      uuid.NewString(),
		Role:    models.RoleFunction,
		Name:    name,
		Content: content,
	}
}

func systemMessage(content string) models.Message {
	return models.Message{
		ID:      uuid.NewString(),
		Role:    models.RoleSystem,
		Content: content,
	}
}
