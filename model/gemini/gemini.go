// Package gemini provides a model.Model backed by the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/model"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Options configures the Gemini adapter.
type Options struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// Model wraps the GenAI client behind the generic model.Model interface. The
// underlying client is created lazily because construction needs a context.
type Model struct {
	opts Options

	mu     sync.Mutex
	client *genai.Client
}

// NewModel creates a Gemini model. Without an APIKey the SDK falls back to
// the GEMINI_API_KEY / GOOGLE_API_KEY environment variables.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{Model: DefaultModel, Temperature: 0.7}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{opts: opts}
}

// NewModelFromClient creates a Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	m := NewModel(optFns...)
	m.client = client
	return m
}

func (m *Model) getClient(ctx context.Context) (*genai.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return m.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  m.opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	m.client = client
	return client, nil
}

// Generate implements model.Model. System messages become the system
// instruction; assistant turns use Gemini's "model" role.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		client, err := m.getClient(ctx)
		if err != nil {
			errCh <- err
			return
		}

		contents, system := convertMessages(req.Messages)
		if len(contents) == 0 {
			errCh <- fmt.Errorf("gemini: message list has no user or assistant content")
			return
		}

		modelName := m.opts.Model
		if req.Model != "" {
			modelName = req.Model
		}
		temperature := m.opts.Temperature
		if req.Temperature != nil {
			temperature = float32(*req.Temperature)
		}
		config := &genai.GenerateContentConfig{Temperature: &temperature}
		if req.MaxTokens > 0 {
			config.MaxOutputTokens = int32(req.MaxTokens) //nolint:gosec // bounded by callers
		} else if m.opts.MaxOutputTokens > 0 {
			config.MaxOutputTokens = m.opts.MaxOutputTokens
		}
		if system != "" {
			config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
		}

		result, err := client.Models.GenerateContent(ctx, modelName, contents, config)
		if err != nil {
			errCh <- wrapError(err)
			return
		}
		if result == nil {
			errCh <- fmt.Errorf("gemini: empty response")
			return
		}

		resp := model.Response{
			ID:           result.ResponseID,
			Text:         result.Text(),
			FinishReason: finishReason(result),
		}
		if resp.ID == "" {
			resp.ID = model.NewResponseID()
		}
		if u := result.UsageMetadata; u != nil {
			resp.Usage = &model.TokenUsage{
				PromptTokens:     int(u.PromptTokenCount),
				CompletionTokens: int(u.CandidatesTokenCount),
				TotalTokens:      int(u.TotalTokenCount),
			}
		}
		out <- resp
	}()

	return out, errCh
}

func convertMessages(messages []core.Message) ([]*genai.Content, string) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			system = append(system, msg.Content)
		case core.RoleAssistant:
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: msg.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: msg.Content}}})
		}
	}
	return contents, strings.Join(system, "\n\n")
}

func finishReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 || result.Candidates[0] == nil {
		return "stop"
	}
	switch reason := result.Candidates[0].FinishReason; reason {
	case "", genai.FinishReasonStop:
		return "stop"
	case genai.FinishReasonMaxTokens:
		return "length"
	default:
		return strings.ToLower(string(reason))
	}
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}

// wrapError keeps the HTTP status of API failures visible to retry policies.
func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &model.StatusError{Provider: "gemini", StatusCode: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &model.StatusError{Provider: "gemini", StatusCode: apiErrPtr.Code, Err: err}
	}
	return fmt.Errorf("gemini api error: %w", err)
}
