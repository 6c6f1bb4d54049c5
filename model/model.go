package model

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/studybuddy/tutormesh/core"
)

// Request captures the normalized model input produced by agents and the router.
type Request struct {
	// Model overrides the adapter's configured model identifier when set.
	Model       string         `json:"model,omitempty"`
	Messages    []core.Message `json:"messages"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Stream      bool           `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"` // Indicates if this is a partial response
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", ...
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "ollama", "gemini", "mock"
}

// Model is the minimal interface required by the router and agents to drive
// generation. Both channels are closed by the implementation when done; at
// most one error is sent.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// NewResponseID returns a fresh identifier for adapters whose vendor does not
// supply one.
func NewResponseID() string { return "resp_" + uuid.NewString() }

// MockModel is a lightweight in‑memory Model useful for tests & examples.
// Responses are keyed by the content of the last message in the request.
type MockModel struct {
	info      Info
	responses map[string]string
	fallback  string
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// SetDefault sets the completion returned when no canned response matches.
func (m *MockModel) SetDefault(response string) { m.fallback = response }

// SetError makes every subsequent Generate call fail with err.
func (m *MockModel) SetError(err error) { m.err = err }

// Generate implements Model; emits optional streaming rune chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)
		if m.err != nil {
			errCh <- m.err
			return
		}
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}
		input := req.Messages[len(req.Messages)-1].Content
		full, ok := m.responses[input]
		if !ok {
			full = m.fallback
		}
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", input)
		}
		id := NewResponseID()
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{ID: id, Partial: true, Text: string(r)}:
				}
			}
		}
		respCh <- Response{ID: id, Text: full, FinishReason: "stop"}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
