// Package ollama provides a model.Model backed by a local Ollama runtime,
// the default backend of the tutoring assistant.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/model"
)

// DefaultHost is the address of a locally running `ollama serve`.
const DefaultHost = "http://localhost:11434"

// DefaultModel is a small model that runs on modest hardware.
const DefaultModel = "llama3.2:3b"

// Options configures the Ollama adapter.
type Options struct {
	Host        string
	Model       string
	Temperature float64
	NumPredict  int
	HTTPClient  *http.Client
}

// Model wraps the Ollama chat API behind the generic model.Model interface.
type Model struct {
	client *api.Client
	opts   Options
}

// NewModel creates an Ollama model. An unparsable Host falls back to DefaultHost.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Host:        DefaultHost,
		Model:       DefaultModel,
		Temperature: 0.7,
		HTTPClient:  http.DefaultClient,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	base, err := url.Parse(opts.Host)
	if err != nil || base.Host == "" {
		base, _ = url.Parse(DefaultHost)
	}

	return &Model{client: api.NewClient(base, opts.HTTPClient), opts: opts}
}

// NewModelFromClient creates an Ollama model from an existing API client.
func NewModelFromClient(client *api.Client, optFns ...func(o *Options)) *Model {
	opts := Options{Model: DefaultModel, Temperature: 0.7}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model using the /api/chat endpoint.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		chatReq := m.buildRequest(req)
		id := model.NewResponseID()

		var text strings.Builder
		err := m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				text.WriteString(resp.Message.Content)
				if req.Stream {
					out <- model.Response{ID: id, Partial: true, Text: resp.Message.Content}
				}
			}
			if resp.Done {
				out <- model.Response{
					ID:           id,
					Text:         text.String(),
					FinishReason: stopReason(resp),
					Usage: &model.TokenUsage{
						PromptTokens:     resp.PromptEvalCount,
						CompletionTokens: resp.EvalCount,
						TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
					},
				}
			}
			return nil
		})
		if err != nil {
			errCh <- classifyError(err)
		}
	}()

	return out, errCh
}

func (m *Model) buildRequest(req model.Request) *api.ChatRequest {
	modelName := m.opts.Model
	if req.Model != "" {
		modelName = req.Model
	}
	temperature := m.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	options := map[string]any{"temperature": temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	} else if m.opts.NumPredict > 0 {
		options["num_predict"] = m.opts.NumPredict
	}

	stream := req.Stream
	return &api.ChatRequest{
		Model:    modelName,
		Messages: convertMessages(req.Messages),
		Stream:   &stream,
		Options:  options,
	}
}

func convertMessages(messages []core.Message) []api.Message {
	result := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		result = append(result, api.Message{Role: string(msg.Role), Content: msg.Content})
	}
	return result
}

func stopReason(resp api.ChatResponse) string {
	switch resp.DoneReason {
	case "", "stop":
		return "stop"
	default:
		return resp.DoneReason
	}
}

// classifyError adds a hint to the most common local runtime failures and
// keeps the status of runtime responses visible to retry policies.
func classifyError(err error) error {
	msg := err.Error()
	var statusErr api.StatusError
	hasStatus := errors.As(err, &statusErr)
	switch {
	case strings.Contains(msg, "connection refused"):
		return fmt.Errorf("ollama server not reachable (is `ollama serve` running?): %w", err)
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		err = fmt.Errorf("ollama model not found (try `ollama pull`): %w", err)
		if hasStatus {
			return &model.StatusError{Provider: "ollama", StatusCode: statusErr.StatusCode, Err: err}
		}
		return err
	case hasStatus:
		return &model.StatusError{Provider: "ollama", StatusCode: statusErr.StatusCode, Err: err}
	default:
		return fmt.Errorf("ollama api error: %w", err)
	}
}

// Info returns metadata describing this Ollama model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "ollama"}
}
