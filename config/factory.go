package config

import (
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/studybuddy/tutormesh/logging"
	"github.com/studybuddy/tutormesh/model"
	"github.com/studybuddy/tutormesh/model/anthropic"
	"github.com/studybuddy/tutormesh/model/gemini"
	"github.com/studybuddy/tutormesh/model/ollama"
	"github.com/studybuddy/tutormesh/model/openai"
)

// NewModel builds the configured backend wrapped with timeout, rate limit
// and retry. The timeout bounds each attempt, and every attempt (retries
// included) waits for a rate limit token.
func NewModel(cfg *Config) (model.Model, error) {
	var m model.Model
	switch cfg.Backend {
	case BackendOllama:
		m = ollama.NewModel(func(o *ollama.Options) {
			o.Host = cfg.Ollama.Host
			o.Model = cfg.Ollama.Model
		})
	case BackendGemini:
		m = gemini.NewModel(func(o *gemini.Options) {
			o.APIKey = cfg.Gemini.APIKey
			o.Model = cfg.Gemini.Model
		})
	case BackendOpenAI:
		m = openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.OpenAI.APIKey
			o.Model = cfg.OpenAI.Model
			o.BaseURL = cfg.OpenAI.BaseURL
		})
	case BackendAnthropic:
		m = anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.Anthropic.APIKey
			o.Model = anthropicsdk.Model(cfg.Anthropic.Model)
		})
	case BackendMock:
		m = model.NewMockModel(BackendMock)
	default:
		return nil, fmt.Errorf("config: unknown backend %q", cfg.Backend)
	}

	m = model.WithTimeout(m, cfg.Timeout)
	m = model.WithRateLimit(m, model.NewLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst))
	m = model.WithRetry(m, func(o *model.RetryOptions) {
		o.MaxRetries = cfg.Retry.MaxRetries
		if cfg.Retry.BaseBackoff > 0 {
			o.BaseBackoff = cfg.Retry.BaseBackoff
		}
		if cfg.Retry.MaxBackoff > 0 {
			o.MaxBackoff = cfg.Retry.MaxBackoff
		}
	})
	return m, nil
}

// NewLogger builds the structured logger described by cfg.Log.
func NewLogger(cfg *Config) *logging.TutorLogger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LogLevelInfo
	}
	return logging.NewSlogLogger(level, cfg.Log.Format, cfg.Log.AddSource)
}
