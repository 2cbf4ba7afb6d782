package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/abdulachik/postgen/internal/llm"
)

// ErrMissingRequired is wrapped by every validation error about an unset key.
var ErrMissingRequired = errors.New("missing required configuration")

// Config holds all application configuration.
type Config struct {
	// Corpus
	CorpusPath     string `envconfig:"CORPUS_PATH" default:"data/processed_posts.json"`
	RawCorpusPath  string `envconfig:"RAW_CORPUS_PATH" default:"data/raw_posts.json"`
	CategoriesPath string `envconfig:"CATEGORIES_PATH"` // optional YAML category rules
	ExampleLimit   int    `envconfig:"EXAMPLE_LIMIT" default:"3"`

	// Run ledger
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/postgen.db"`

	// VecLite
	VecLitePath   string `envconfig:"VECLITE_PATH" default:"data/posts.veclite"`
	VecLiteConfig string `envconfig:"VECLITE_CONFIG"` // veclite.yaml, searched in default locations when empty

	// LLM
	LLMProvider     string `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMModel        string `envconfig:"LLM_MODEL"`
	LLMBaseURL      string `envconfig:"LLM_BASE_URL"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`

	// Server
	ServerPort           int           `envconfig:"SERVER_PORT" default:"8080"`
	CorpusReloadInterval time.Duration `envconfig:"CORPUS_RELOAD_INTERVAL" default:"0s"` // 0 disables reloading

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.CorpusPath == "" {
		return fmt.Errorf("%w: CORPUS_PATH", ErrMissingRequired)
	}
	if c.ExampleLimit < 0 {
		return fmt.Errorf("invalid EXAMPLE_LIMIT: %d", c.ExampleLimit)
	}
	return nil
}

// ValidateForLLM checks that the selected provider has an API key.
func (c *Config) ValidateForLLM() error {
	switch c.LLMProvider {
	case llm.ProviderOpenAI, "":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY (LLM_PROVIDER=openai)", ErrMissingRequired)
		}
	case llm.ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY (LLM_PROVIDER=anthropic)", ErrMissingRequired)
		}
	case llm.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY (LLM_PROVIDER=gemini)", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("invalid LLM_PROVIDER: %s (must be 'openai', 'anthropic' or 'gemini')", c.LLMProvider)
	}
	return nil
}

// ValidateForGeneration checks configuration needed to generate posts.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.ValidateForLLM()
}

// ValidateForPreprocess checks configuration needed to preprocess a corpus.
func (c *Config) ValidateForPreprocess() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.RawCorpusPath == "" {
		return fmt.Errorf("%w: RAW_CORPUS_PATH", ErrMissingRequired)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: DATABASE_PATH", ErrMissingRequired)
	}
	return c.ValidateForLLM()
}

// ValidateForVecLite checks configuration needed for VecLite.
func (c *Config) ValidateForVecLite() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.VecLitePath == "" {
		return fmt.Errorf("%w: VECLITE_PATH", ErrMissingRequired)
	}
	return nil
}

// ValidateForServe checks configuration needed for the HTTP API.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForGeneration(); err != nil {
		return err
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.ServerPort)
	}
	if c.CorpusReloadInterval < 0 {
		return fmt.Errorf("invalid CORPUS_RELOAD_INTERVAL: %s", c.CorpusReloadInterval)
	}
	return nil
}

// LLMConfig returns the client configuration for the selected provider.
func (c *Config) LLMConfig() llm.Config {
	cfg := llm.Config{
		Provider: c.LLMProvider,
		Model:    c.LLMModel,
		BaseURL:  c.LLMBaseURL,
	}
	switch c.LLMProvider {
	case llm.ProviderAnthropic:
		cfg.APIKey = c.AnthropicAPIKey
	case llm.ProviderGemini:
		cfg.APIKey = c.GeminiAPIKey
	default:
		cfg.APIKey = c.OpenAIAPIKey
	}
	return cfg
}
