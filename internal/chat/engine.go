// Package chat implements the conversational orchestration core: the
// dispatch engine that turns a user utterance into streamed text or a tool
// invocation, the durable message log behind it, and the ephemeral UI
// stream projection handed to renderers.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
	"github.com/AIDentistry/nicolette-chatbot/internal/observability"
	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// UIItem is one entry of the render feed: an identifier plus an opaque
// render node. Items are appended to the feed and never edited after being
// handed to the caller; a live item's node may be a *UIStream whose value
// settles when the underlying work finishes.
type UIItem struct {
	ID   string
	Node ui.Node
}

// Turn is the handle a tool handler works through during one invocation:
// it carries the turn's UI stream and the conversation's durable state.
type Turn struct {
	state  *State
	stream *UIStream
}

// Yield publishes an intermediate node as the turn's current view value.
// Yields are ordered; each value is observable before the next is produced.
func (t *Turn) Yield(node ui.Node) {
	// The stream is open for the whole handler lifetime; a closed stream
	// here means the engine already finalized the turn, and the late
	// yield is intentionally dropped.
	_ = t.stream.Update(node)
}

// Append commits the given messages to durable state, appended to the log
// in order, and persists the result when a session exists.
func (t *Turn) Append(ctx context.Context, msgs ...models.Message) error {
	return t.state.Mutate(ctx, func(chat *models.Chat) {
		chat.Messages = append(chat.Messages, msgs...)
	})
}

// ChatID returns the conversation identifier.
func (t *Turn) ChatID() string { return t.state.ChatID() }

// Options configures an Engine.
type Options struct {
	// Model passed to the completion provider.
	Model string

	// System is the static system instructions for every request.
	System string

	// ConfirmDelay is the simulated processing latency of the detached
	// purchase confirmation. Defaults to one second.
	ConfirmDelay time.Duration

	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// Engine is the per-conversation dispatch engine. A single Engine owns one
// conversation's durable state; at most one turn is dispatched at a time,
// but each turn's streaming work and any previously launched confirmation
// tasks progress concurrently.
type Engine struct {
	provider CompletionProvider
	registry *Registry
	state    *State

	model        string
	system       string
	confirmDelay time.Duration
	sleep        func(context.Context, time.Duration)

	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewEngine creates a dispatch engine over the given provider, tool roster,
// and durable state.
func NewEngine(provider CompletionProvider, registry *Registry, state *State, opts Options) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.ConfirmDelay == 0 {
		opts.ConfirmDelay = time.Second
	}
	return &Engine{
		provider:     provider,
		registry:     registry,
		state:        state,
		model:        opts.Model,
		system:       opts.System,
		confirmDelay: opts.ConfirmDelay,
		sleep:        sleepContext,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
}

// State exposes the conversation's durable state store.
func (e *Engine) State() *State { return e.state }

// SubmitUserMessage runs one turn: the user utterance is staged into the
// durable log, the completion provider is invoked with the full history,
// and the response is dispatched to either a text stream or a tool handler.
//
// The returned item is available as soon as the dispatch path is known; its
// node keeps updating until the underlying stream closes. Side effects
// already staged are still committed if the caller stops observing the
// item.
func (e *Engine) SubmitUserMessage(ctx context.Context, content string) (*UIItem, error) {
	staged := e.state.Stage(func(chat *models.Chat) {
		chat.Messages = append(chat.Messages, models.Message{
			ID:      uuid.NewString(),
			Role:    models.RoleUser,
			Content: content,
		})
	})

	req := &CompletionRequest{
		Model:    e.model,
		System:   e.system,
		Messages: projectMessages(staged.Messages),
		Tools:    e.registry.Descriptors(),
	}

	start := time.Now()
	chunks, err := e.provider.Complete(ctx, req)
	if err != nil {
		e.metrics.ObserveTurn("stream", "error")
		return nil, fmt.Errorf("completion request: %w", err)
	}

	for chunk := range chunks {
		switch {
		case chunk.Err != nil:
			e.metrics.ObserveTurn("stream", "error")
			return nil, fmt.Errorf("completion stream: %w", chunk.Err)

		case chunk.ToolCall != nil:
			e.metrics.ObserveLLMRequest(e.provider.Name(), e.model, time.Since(start))
			drain(chunks)
			return e.invokeTool(ctx, chunk.ToolCall)

		case chunk.Text != "":
			stream := NewUIStream(ui.BotText{Content: chunk.Text})
			item := &UIItem{ID: uuid.NewString(), Node: stream}
			go e.consumeText(context.WithoutCancel(ctx), chunks, stream, chunk.Text, start)
			return item, nil

		case chunk.Done:
			// Empty completion: nothing to stream, nothing to commit.
			e.logger.Warn(ctx, "empty completion", "chat_id", e.state.ChatID())
			e.metrics.ObserveTurn("empty", "ok")
			return &UIItem{ID: uuid.NewString(), Node: ui.BotText{}}, nil
		}
	}

	e.metrics.ObserveTurn("empty", "ok")
	return &UIItem{ID: uuid.NewString(), Node: ui.BotText{}}, nil
}

// consumeText accumulates the remaining text deltas into the turn's stream
// and, on completion, commits the assistant message to durable state.
func (e *Engine) consumeText(ctx context.Context, chunks <-chan *CompletionChunk, stream *UIStream, first string, start time.Time) {
	var builder strings.Builder
	builder.WriteString(first)

	for chunk := range chunks {
		switch {
		case chunk.Err != nil:
			e.logger.Error(ctx, "completion stream failed mid-turn", "error", chunk.Err)
			e.metrics.ObserveTurn("stream", "error")
			_ = stream.Done(nil)
			return

		case chunk.ToolCall != nil:
			// One tool per turn; a tool call after text deltas is
			// outside the protocol.
			e.logger.Warn(ctx, "tool call after text deltas ignored", "tool", chunk.ToolCall.Name)

		case chunk.Text != "":
			builder.WriteString(chunk.Text)
			_ = stream.Update(ui.BotText{Content: builder.String()})
		}
	}

	e.metrics.ObserveLLMRequest(e.provider.Name(), e.model, time.Since(start))

	full := builder.String()
	_ = stream.Done(ui.BotText{Content: full})

	// Finalize under the commit lock: a detached confirmation may have
	// written back while the stream was draining, and its patch must not
	// be clobbered by a snapshot taken before it landed.
	err := e.state.Mutate(ctx, func(chat *models.Chat) {
		chat.Messages = append(chat.Messages, models.Message{
			ID:      uuid.NewString(),
			Role:    models.RoleAssistant,
			Content: full,
		})
	})
	if err != nil {
		e.logger.Error(ctx, "commit after text turn failed", "error", err)
	}
	e.metrics.ObserveTurn("stream", "ok")
}

// invokeTool dispatches a structured tool call to its handler. Lookup and
// validation failures abort the turn before anything is committed; the
// handler itself then runs detached from the caller, yielding placeholder
// nodes into the turn's stream and finalizing it with the result node.
func (e *Engine) invokeTool(ctx context.Context, tc *ToolCall) (*UIItem, error) {
	handler, ok := e.registry.Get(tc.Name)
	if !ok {
		e.metrics.ObserveTurn("invoke", "error")
		return nil, fmt.Errorf("%w: %s", ErrToolNotRegistered, tc.Name)
	}
	if err := e.registry.Validate(tc.Name, tc.Input); err != nil {
		e.metrics.ObserveTool(tc.Name, "invalid", 0)
		e.metrics.ObserveTurn("invoke", "error")
		return nil, err
	}

	stream := NewUIStream(ui.Spinner{})
	item := &UIItem{ID: uuid.NewString(), Node: stream}
	turn := &Turn{state: e.state, stream: stream}

	runCtx := context.WithoutCancel(ctx)
	go func() {
		start := time.Now()
		node, err := handler.Generate(runCtx, turn, tc.Input)
		if err != nil {
			e.logger.Error(runCtx, "tool handler failed", "tool", tc.Name, "error", err)
			e.metrics.ObserveTool(tc.Name, "error", time.Since(start))
			e.metrics.ObserveTurn("invoke", "error")
			_ = stream.Done(ui.BotText{Content: "Something went wrong. Please try again."})
			return
		}
		e.metrics.ObserveTool(tc.Name, "ok", time.Since(start))
		e.metrics.ObserveTurn("invoke", "ok")
		_ = stream.Done(node)
	}()

	return item, nil
}

// projectMessages maps the durable log to the provider's view of history.
// System-authored messages are retained: they steer later completions.
func projectMessages(msgs []models.Message) []CompletionMessage {
	out := make([]CompletionMessage, len(msgs))
	for i, m := range msgs {
		out[i] = CompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
			Name:    m.Name,
		}
	}
	return out
}

// drain discards the remainder of a chunk stream so the producing goroutine
// can finish.
func drain(chunks <-chan *CompletionChunk) {
	go func() {
		for range chunks {
		}
	}()
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
