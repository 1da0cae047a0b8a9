// Package providers implements chat.CompletionProvider backends.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat"
)

// OpenAIProvider implements chat.CompletionProvider for OpenAI models.
//
// It streams responses and converts OpenAI's incremental tool-call deltas
// into a single complete tool call chunk, matching the dispatch engine's
// one-tool-per-turn protocol. Transient failures on stream creation are
// retried with linear backoff.
//
// Safe for concurrent use; every Complete call creates an independent
// stream and goroutine.
type OpenAIProvider struct {
	client     *openai.Client
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIProvider creates an OpenAI provider. An empty API key yields a
// provider whose Complete calls fail, allowing delayed configuration.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	p := &OpenAIProvider{
		maxRetries: 3,
		retryDelay: time.Second,
	}
	if apiKey != "" {
		p.client = openai.NewClient(apiKey)
	}
	return p
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string { return "openai" }

// Complete sends a completion request and returns a streaming response
// channel. Function-role history entries are forwarded with their tool
// name so the model sees its earlier tool results.
func (p *OpenAIProvider) Complete(ctx context.Context, req *chat.CompletionRequest) (<-chan *chat.CompletionChunk, error) {
	if p.client == nil {
		return nil, errors.New("openai API key not configured")
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: convertMessages(req.Messages, req.System),
		Stream:   true,
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = convertTools(req.Tools)
	}

	var stream *openai.ChatCompletionStream
	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.retryDelay * time.Duration(attempt)):
			}
		}
		stream, lastErr = p.client.CreateChatCompletionStream(ctx, chatReq)
		if lastErr == nil {
			break
		}
		if !isRetryable(lastErr) {
			return nil, fmt.Errorf("completion stream: %w", lastErr)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}

	chunks := make(chan *chat.CompletionChunk)
	go p.processStream(ctx, stream, chunks)
	return chunks, nil
}

// processStream converts OpenAI stream events into CompletionChunks. Tool
// calls arrive incrementally (id, name, then argument fragments) and are
// accumulated until the finish reason marks them complete; only the first
// finished tool call is emitted, per the one-tool-per-turn protocol.
func (p *OpenAIProvider) processStream(ctx context.Context, stream *openai.ChatCompletionStream, chunks chan<- *chat.CompletionChunk) {
	defer close(chunks)
	defer stream.Close()

	pending := make(map[int]*chat.ToolCall)

	for {
		select {
		case <-ctx.Done():
			chunks <- &chat.CompletionChunk{Err: ctx.Err()}
			return
		default:
		}

		response, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if tc := firstComplete(pending); tc != nil {
					chunks <- &chat.CompletionChunk{ToolCall: tc}
					return
				}
				chunks <- &chat.CompletionChunk{Done: true}
				return
			}
			chunks <- &chat.CompletionChunk{Err: err}
			return
		}

		if len(response.Choices) == 0 {
			continue
		}
		choice := response.Choices[0]

		if choice.Delta.Content != "" {
			chunks <- &chat.CompletionChunk{Text: choice.Delta.Content}
		}

		for _, tc := range choice.Delta.ToolCalls {
			index := 0
			if tc.Index != nil {
				index = *tc.Index
			}
			if pending[index] == nil {
				pending[index] = &chat.ToolCall{}
			}
			if tc.ID != "" {
				pending[index].ID = tc.ID
			}
			if tc.Function.Name != "" {
				pending[index].Name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				pending[index].Input = append(pending[index].Input, tc.Function.Arguments...)
			}
		}

		if choice.FinishReason == openai.FinishReasonToolCalls {
			if tc := firstComplete(pending); tc != nil {
				chunks <- &chat.CompletionChunk{ToolCall: tc}
				return
			}
		}
	}
}

func firstComplete(pending map[int]*chat.ToolCall) *chat.ToolCall {
	for i := 0; i < len(pending); i++ {
		tc := pending[i]
		if tc != nil && tc.Name != "" {
			if len(tc.Input) == 0 {
				tc.Input = json.RawMessage(`{}`)
			}
			return tc
		}
	}
	return nil
}

func convertMessages(messages []chat.CompletionMessage, system string) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range messages {
		role := msg.Role
		switch role {
		case "function":
			// OpenAI carries earlier tool results in function-role
			// messages keyed by tool name.
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleFunction,
				Name:    msg.Name,
				Content: msg.Content,
			})
			continue
		case "data", "tool":
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return out
}

func convertTools(tools []chat.ToolDescriptor) []openai.Tool {
	out := make([]openai.Tool, len(tools))
	for i, tool := range tools {
		var schema map[string]any
		if err := json.Unmarshal(tool.Schema, &schema); err != nil {
			schema = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  schema,
			},
		}
	}
	return out
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	// Network-level failures without an API status are worth retrying.
	return true
}
