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

// EventsTool shows a timeline of market events between user-highlighted
// dates.
type EventsTool struct {
	delay time.Duration
}

// NewEventsTool returns the get_events handler. A negative delay selects
// the default simulated latency.
func NewEventsTool(delay time.Duration) *EventsTool {
	return &EventsTool{delay: normalizeDelay(delay)}
}

func (t *EventsTool) Name() string { return chat.ToolGetEvents }

func (t *EventsTool) Description() string {
	return "List funny imaginary events between user highlighted dates that describe stock activity."
}

func (t *EventsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"events": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"date": {"type": "string", "description": "The date of the event, in ISO-8601 format"},
						"headline": {"type": "string", "description": "The headline of the event"},
						"description": {"type": "string", "description": "The description of the event"}
					},
					"required": ["date", "headline", "description"]
				}
			}
		},
		"required": ["events"]
	}`)
}

func (t *EventsTool) Generate(ctx context.Context, turn *chat.Turn, params json.RawMessage) (ui.Node, error) {
	var input struct {
		Events []models.Event `json:"events"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("decode get_events params: %w", err)
	}

	turn.Yield(ui.Card{Child: ui.Skeleton{For: t.Name()}})

	sleep(ctx, t.delay)

	content, err := json.Marshal(input.Events)
	if err != nil {
		return nil, fmt.Errorf("encode get_events result: %w", err)
	}
	if err := turn.Append(ctx, functionMessage(t.Name(), string(content))); err != nil {
		return nil, err
	}

	return ui.Card{Child: ui.EventsView{Events: input.Events}}, nil
}

func (t *EventsTool) Render(content []byte) (ui.Node, error) {
	var events []models.Event
	if err := json.Unmarshal(content, &events); err != nil {
		return nil, fmt.Errorf("decode stored get_events result: %w", err)
	}
	return ui.Card{Child: ui.EventsView{Events: events}}, nil
}
