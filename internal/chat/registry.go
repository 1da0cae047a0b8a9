package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
)

// Tool names in the fixed roster. The roster is closed: the engine
// dispatches by exact name, and an unknown name aborts the turn.
const (
	ToolListStocks        = "list_stocks"
	ToolShowStockPrice    = "show_stock_price"
	ToolShowStockPurchase = "show_stock_purchase"
	ToolGetEvents         = "get_events"
)

// Handler is one named capability the completion provider may invoke.
//
// Generate runs the tool's multi-phase lifecycle for a live turn: it yields
// placeholder nodes through the turn, commits its function-role message to
// durable state, and returns the final node. Validation failures are a
// modeled outcome (an error node plus a system log entry), never an error
// return; an error return is a genuine fault.
//
// Render rebuilds the final node from a previously committed function-role
// message's content. Rehydration uses it so live and resumed conversations
// render identically.
type Handler interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Generate(ctx context.Context, turn *Turn, params json.RawMessage) (ui.Node, error)
	Render(content []byte) (ui.Node, error)
}

// Registry holds the tool roster, fixed at startup. Tool parameters are
// validated against each handler's JSON schema before dispatch.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	schemas  map[string]*jsonschema.Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

// Register adds a handler to the roster, compiling its parameter schema.
// A handler with the same name replaces the previous registration.
func (r *Registry) Register(h Handler) error {
	schema, err := jsonschema.CompileString(h.Name(), string(h.Schema()))
	if err != nil {
		return fmt.Errorf("compile schema for tool %s: %w", h.Name(), err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
	r.schemas[h.Name()] = schema
	return nil
}

// Get returns a handler by name and whether it was found.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Validate checks provider-supplied parameters against the tool's schema.
func (r *Registry) Validate(name string, params json.RawMessage) error {
	r.mu.RLock()
	schema := r.schemas[name]
	r.mu.RUnlock()
	if schema == nil {
		return fmt.Errorf("%w: %s", ErrToolNotRegistered, name)
	}

	var payload any
	if len(params) > 0 {
		if err := json.Unmarshal(params, &payload); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidToolParams, name, err)
		}
	} else {
		payload = map[string]any{}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidToolParams, name, err)
	}
	return nil
}

// Descriptors returns the roster as tool descriptors for the completion
// provider, ordered by name for a stable prompt.
func (r *Registry) Descriptors() []ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolDescriptor, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, ToolDescriptor{
			Name:        h.Name(),
			Description: h.Description(),
			Schema:      h.Schema(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
