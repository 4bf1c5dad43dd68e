package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dewantaratirta/agentkit/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// NewFunctionDefinition is shorthand for a "function" typed ToolDefinition.
func NewFunctionDefinition(name, description string, parameters map[string]any) ToolDefinition {
	return ToolDefinition{
		Type: "function",
		Function: FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Request captures the normalized model input.
type Request struct {
	Instructions string           `json:"instructions"`
	Contents     []core.Turn      `json:"contents"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final completion of one model call. Parts holds text and
// tool call parts in the order the provider returned them.
type Response struct {
	ID           string      `json:"id"`
	Parts        []core.Part `json:"parts"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the engine to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ErrNoResponse is returned by Collect when a model closes its channels
// without producing a response or an error.
var ErrNoResponse = errors.New("model returned no response")

// Collect drains both channels of a Generate call and returns the last
// response seen, or the first error.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		last Response
		got  bool
	)

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			last, got = r, true
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}

	if !got {
		return Response{}, ErrNoResponse
	}

	return last, nil
}

type scripted struct {
	resp Response
	err  error
}

// MockModel is a scripted in-memory Model useful for tests & examples.
//
// Queued responses and errors are served in FIFO order. Once the queue is
// empty it answers with "Mock response to: <last user text>".
type MockModel struct {
	info Info

	mu       sync.Mutex
	queue    []scripted
	requests []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
	}
}

// Enqueue schedules responses to be returned by subsequent Generate calls.
func (m *MockModel) Enqueue(responses ...Response) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range responses {
		m.queue = append(m.queue, scripted{resp: r})
	}

	return m
}

// EnqueueText schedules a plain text response.
func (m *MockModel) EnqueueText(text string) *MockModel {
	return m.Enqueue(Response{Parts: []core.Part{core.TextPart{Text: text}}, FinishReason: "stop"})
}

// EnqueueToolCalls schedules a response that requests the given tool calls.
func (m *MockModel) EnqueueToolCalls(calls ...core.ToolCallPart) *MockModel {
	parts := make([]core.Part, len(calls))
	for i, c := range calls {
		parts[i] = c
	}

	return m.Enqueue(Response{Parts: parts, FinishReason: "tool_calls"})
}

// EnqueueError schedules a failed call.
func (m *MockModel) EnqueueError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = append(m.queue, scripted{err: err})

	return m
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.requests))
	copy(out, m.requests)

	return out
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)

	var next *scripted
	if len(m.queue) > 0 {
		next = &m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}

		if next != nil {
			if next.err != nil {
				errCh <- next.err
				return
			}
			respCh <- next.resp
			return
		}

		input := lastUserText(req.Contents)
		if input == "" {
			errCh <- fmt.Errorf("no contents provided")
			return
		}

		respCh <- Response{
			Parts:        []core.Part{core.TextPart{Text: "Mock response to: " + input}},
			FinishReason: "stop",
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

func lastUserText(turns []core.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == core.RoleUser {
			return turns[i].PlainText()
		}
	}

	return ""
}
