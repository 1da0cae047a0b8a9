package providers

import (
	"context"
	"encoding/json"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat"
)

// ScriptedProvider replays a fixed sequence of completions, one per
// Complete call. It backs tests and the offline demo path.
type ScriptedProvider struct {
	responses []ScriptedResponse
	calls     int
}

// ScriptedResponse is one canned completion: either a series of text
// deltas or a single tool call.
type ScriptedResponse struct {
	Text     []string
	ToolCall *chat.ToolCall
}

// NewScriptedProvider creates a provider that replays the given responses
// in order. Calls past the end of the script return an empty completion.
func NewScriptedProvider(responses ...ScriptedResponse) *ScriptedProvider {
	return &ScriptedProvider{responses: responses}
}

func (p *ScriptedProvider) Name() string { return "scripted" }

// Calls reports how many completions have been requested.
func (p *ScriptedProvider) Calls() int { return p.calls }

func (p *ScriptedProvider) Complete(ctx context.Context, req *chat.CompletionRequest) (<-chan *chat.CompletionChunk, error) {
	var resp ScriptedResponse
	if p.calls < len(p.responses) {
		resp = p.responses[p.calls]
	}
	p.calls++

	chunks := make(chan *chat.CompletionChunk)
	go func() {
		defer close(chunks)
		if resp.ToolCall != nil {
			select {
			case chunks <- &chat.CompletionChunk{ToolCall: resp.ToolCall}:
			case <-ctx.Done():
			}
			return
		}
		for _, delta := range resp.Text {
			select {
			case chunks <- &chat.CompletionChunk{Text: delta}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case chunks <- &chat.CompletionChunk{Done: true}:
		case <-ctx.Done():
		}
	}()
	return chunks, nil
}

// ToolCallResponse builds a scripted tool-call response, marshaling args
// into the call input.
func ToolCallResponse(name string, args any) ScriptedResponse {
	input, _ := json.Marshal(args)
	return ScriptedResponse{ToolCall: &chat.ToolCall{ID: name + "-call", Name: name, Input: input}}
}

// TextResponse builds a scripted text response from the given deltas.
func TextResponse(deltas ...string) ScriptedResponse {
	return ScriptedResponse{Text: deltas}
}
