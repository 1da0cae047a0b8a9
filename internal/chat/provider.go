package chat

import (
	"context"
	"encoding/json"
)

// CompletionProvider is the interface for LLM completion backends.
//
// Implementations must be safe for concurrent use; each Complete call
// returns an independent stream of chunks that terminates with either a
// Done chunk or an Err chunk.
type CompletionProvider interface {
	// Complete sends a prompt and returns a streaming response.
	Complete(ctx context.Context, req *CompletionRequest) (<-chan *CompletionChunk, error)

	// Name returns the provider name.
	Name() string
}

// CompletionRequest contains everything sent to the completion provider:
// the projected conversation history, the static system instructions, and
// the registered tool descriptors.
type CompletionRequest struct {
	// Model specifies which model to use. If empty, the provider's
	// default model is used.
	Model string `json:"model"`

	// System is the system prompt.
	System string `json:"system,omitempty"`

	// Messages is the full conversation history in order, projected to
	// role/content/name tuples. System-authored messages are retained.
	Messages []CompletionMessage `json:"messages"`

	// Tools describes the fixed roster the model may invoke.
	Tools []ToolDescriptor `json:"tools,omitempty"`
}

// CompletionMessage is one history entry as the provider sees it.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ToolDescriptor advertises one tool to the provider.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"parameters"`
}

// ToolCall is the provider's request to invoke one tool.
type ToolCall struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// CompletionChunk is one element of a streaming completion. A stream is a
// finite sequence of text deltas terminated by Done, or exactly one
// ToolCall chunk, or an Err chunk.
type CompletionChunk struct {
	// Text contains a partial response delta.
	Text string `json:"text,omitempty"`

	// ToolCall contains a complete structured tool call.
	ToolCall *ToolCall `json:"tool_call,omitempty"`

	// Done is true when the stream has completed successfully.
	Done bool `json:"done,omitempty"`

	// Err terminates the stream with a failure.
	Err error `json:"-"`
}
