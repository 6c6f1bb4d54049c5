// Package config loads tutormesh settings from a YAML file, an optional
// .env file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/logging"
	"github.com/studybuddy/tutormesh/model/gemini"
	"github.com/studybuddy/tutormesh/model/ollama"
)

// Supported backends.
const (
	BackendOllama    = "ollama"
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendMock      = "mock"
)

// Config is the complete runtime configuration.
type Config struct {
	Backend   string          `yaml:"backend"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`

	// Timeout bounds every backend call; zero disables the bound.
	Timeout   time.Duration   `yaml:"timeout"`
	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	// MaxConcurrentTurns bounds turns running at once across all sessions;
	// zero means unbounded.
	MaxConcurrentTurns int64 `yaml:"max_concurrent_turns"`

	Conversation ConversationConfig `yaml:"conversation"`
	Log          LogConfig          `yaml:"log"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type RetryConfig struct {
	MaxRetries  uint64        `yaml:"max_retries"`
	BaseBackoff time.Duration `yaml:"base_backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
}

// RateLimitConfig throttles backend calls; a zero rate disables it.
type RateLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

// ConversationConfig shapes per-session context.
type ConversationConfig struct {
	MaxHistory int `yaml:"max_history"`
	// HistoryWindow limits the history sent to specialists; zero sends all.
	HistoryWindow int    `yaml:"history_window"`
	StudentLevel  string `yaml:"student_level"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when nothing is set: a local
// Ollama backend with a 20-message history.
func Default() *Config {
	return &Config{
		Backend: BackendOllama,
		Ollama:  OllamaConfig{Host: ollama.DefaultHost, Model: ollama.DefaultModel},
		Gemini:  GeminiConfig{Model: gemini.DefaultModel},
		OpenAI:  OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic: AnthropicConfig{
			Model: "claude-3-5-sonnet-20241022",
		},
		Retry: RetryConfig{
			MaxRetries:  2,
			BaseBackoff: 200 * time.Millisecond,
			MaxBackoff:  5 * time.Second,
		},
		Conversation: ConversationConfig{
			MaxHistory:   core.DefaultMaxHistory,
			StudentLevel: string(core.LevelElementary),
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Namespace: "tutormesh"},
	}
}

// LoadOptions configures Load.
type LoadOptions struct {
	// EnvFiles are read with godotenv; missing files are skipped. Earlier
	// files win over later ones, and the process environment wins over all.
	EnvFiles []string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load builds a Config. path may be empty or point to a missing file, in
// which case only defaults and the environment apply.
func Load(path string, optFns ...func(o *LoadOptions)) (*Config, error) {
	opts := LoadOptions{
		EnvFiles:  []string{".env"},
		LookupEnv: os.LookupEnv,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	lookup, err := newLookup(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLookup(opts LoadOptions) (func(string) (string, bool), error) {
	fileEnv := map[string]string{}
	for i := len(opts.EnvFiles) - 1; i >= 0; i-- {
		values, err := godotenv.Read(opts.EnvFiles[i])
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read env file %s: %w", opts.EnvFiles[i], err)
		}
		for k, v := range values {
			fileEnv[k] = v
		}
	}

	return func(key string) (string, bool) {
		if v, ok := opts.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok && v != ""
	}, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"AI_BACKEND":          &c.Backend,
		"OLLAMA_HOST":         &c.Ollama.Host,
		"OLLAMA_MODEL":        &c.Ollama.Model,
		"GEMINI_API_KEY":      &c.Gemini.APIKey,
		"GEMINI_MODEL":        &c.Gemini.Model,
		"OPENAI_API_KEY":      &c.OpenAI.APIKey,
		"OPENAI_MODEL":        &c.OpenAI.Model,
		"OPENAI_BASE_URL":     &c.OpenAI.BaseURL,
		"ANTHROPIC_API_KEY":   &c.Anthropic.APIKey,
		"ANTHROPIC_MODEL":     &c.Anthropic.Model,
		"TUTOR_STUDENT_LEVEL": &c.Conversation.StudentLevel,
		"LOG_LEVEL":           &c.Log.Level,
		"LOG_FORMAT":          &c.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("TUTOR_MAX_HISTORY"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TUTOR_MAX_HISTORY: %w", err)
		}
		c.Conversation.MaxHistory = n
	}
	if v, ok := lookup("TUTOR_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TUTOR_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v, ok := lookup("TUTOR_MAX_RETRIES"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("TUTOR_MAX_RETRIES: %w", err)
		}
		c.Retry.MaxRetries = n
	}
	if v, ok := lookup("TUTOR_REQUESTS_PER_MINUTE"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("TUTOR_REQUESTS_PER_MINUTE: %w", err)
		}
		c.RateLimit.RequestsPerMinute = f
	}
	if v, ok := lookup("METRICS_ENABLED"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("METRICS_ENABLED: %w", err)
		}
		c.Metrics.Enabled = b
	}
	return nil
}

func (c *Config) normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendOllama
	}
	if c.Ollama.Host == "" {
		c.Ollama.Host = ollama.DefaultHost
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = ollama.DefaultModel
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = gemini.DefaultModel
	}
	if c.Conversation.MaxHistory == 0 {
		c.Conversation.MaxHistory = core.DefaultMaxHistory
	}
	if c.Conversation.StudentLevel == "" {
		c.Conversation.StudentLevel = string(core.LevelElementary)
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama, BackendMock:
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return errors.New("config: gemini backend requires GEMINI_API_KEY")
		}
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return errors.New("config: openai backend requires OPENAI_API_KEY")
		}
	case BackendAnthropic:
		if c.Anthropic.APIKey == "" {
			return errors.New("config: anthropic backend requires ANTHROPIC_API_KEY")
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}

	if c.Conversation.MaxHistory < 0 {
		return fmt.Errorf("config: max_history must not be negative, got %d", c.Conversation.MaxHistory)
	}
	if c.Conversation.HistoryWindow < 0 {
		return fmt.Errorf("config: history_window must not be negative, got %d", c.Conversation.HistoryWindow)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("config: requests_per_minute must not be negative, got %v", c.RateLimit.RequestsPerMinute)
	}
	if c.MaxConcurrentTurns < 0 {
		return fmt.Errorf("config: max_concurrent_turns must not be negative, got %d", c.MaxConcurrentTurns)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := c.StudentLevel(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// StudentLevel returns the parsed default student level.
func (c *Config) StudentLevel() (core.StudentLevel, error) {
	level, err := core.ParseStudentLevel(c.Conversation.StudentLevel)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return level, nil
}

// ModelName returns the model identifier of the selected backend.
func (c *Config) ModelName() string {
	switch c.Backend {
	case BackendGemini:
		return c.Gemini.Model
	case BackendOpenAI:
		return c.OpenAI.Model
	case BackendAnthropic:
		return c.Anthropic.Model
	case BackendMock:
		return BackendMock
	default:
		return c.Ollama.Model
	}
}
