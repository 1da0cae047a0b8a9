package chat

import (
	"context"
	"fmt"

	"github.com/AIDentistry/nicolette-chatbot/internal/auth"
	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// Rehydrate reconstructs the render feed from durable state, used on
// session resume when no live dispatch is in flight. Without an
// authenticated session no view state is returned.
func (e *Engine) Rehydrate(ctx context.Context) ([]UIItem, error) {
	if _, ok := auth.SessionFromContext(ctx); !ok {
		return nil, nil
	}
	return UIStateFromChat(e.state.Get(), e.registry), nil
}

// UIStateFromChat is the pure projection from durable state to view state.
//
// System messages are never rendered. Item ids are derived from the chat id
// and the message index, so rehydrated ids are deterministic and disjoint
// from freshly generated ones. Function messages dispatch by tool name to
// the same final-node rendering the live handler uses; an unknown tool name
// is dropped silently, tolerating schema drift in stored chats.
func UIStateFromChat(chat models.Chat, registry *Registry) []UIItem {
	items := make([]UIItem, 0, len(chat.Messages))

	index := -1
	for _, msg := range chat.Messages {
		if msg.Role == models.RoleSystem {
			continue
		}
		index++
		id := fmt.Sprintf("%s-%d", chat.ID, index)

		var node ui.Node
		switch msg.Role {
		case models.RoleFunction:
			handler, ok := registry.Get(msg.Name)
			if !ok {
				continue
			}
			rendered, err := handler.Render([]byte(msg.Content))
			if err != nil {
				continue
			}
			node = rendered
		case models.RoleUser:
			node = ui.UserText{Content: msg.Content}
		default:
			node = ui.BotText{Content: msg.Content}
		}

		items = append(items, UIItem{ID: id, Node: node})
	}
	return items
}
