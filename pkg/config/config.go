package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Supported model providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	DefaultOpenAIModel          = "gpt-3.5-turbo"
	DefaultOpenAIEmbeddingModel = "text-embedding-ada-002"
	DefaultGeminiModel          = "gemini-2.5-flash"
	DefaultGeminiEmbeddingModel = "text-embedding-004"
	DefaultSystemPrompt         = "You are a helpful assistant."
)

// ErrMissingCredential is returned when the provider's API key is not set.
var ErrMissingCredential = errors.New("missing API credential")

// Config holds all runtime configuration for both programs.
type Config struct {
	Provider string

	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string

	// credentialVars names the environment variables that may hold APIKey.
	credentialVars []string

	DataDir      string
	TopK         int
	ChunkSize    int
	ChunkOverlap int
	Watch        bool
	ShowSources  bool

	SystemPrompt string
	Stream       bool

	// LogLevel is one of debug, info, warn or error. Verbose forces debug.
	LogLevel string
	Verbose  bool
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Provider:     ProviderOpenAI,
		DataDir:      "./data",
		TopK:         2,
		ChunkSize:    1024,
		ChunkOverlap: 20,
		SystemPrompt: DefaultSystemPrompt,
		LogLevel:     "info",
	}
}

// LoadDotEnv loads a .env file from the working directory if it exists.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// FromEnv fills provider, credential and model settings from the process environment.
// It is the only place the environment is consulted; everything downstream receives Config.
func FromEnv(cfg Config) Config {
	if provider := env("LLM_PROVIDER"); provider != "" {
		cfg.Provider = strings.ToLower(provider)
	}
	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	switch cfg.Provider {
	case ProviderGemini:
		cfg.credentialVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
		cfg.APIKey = firstEnv(cfg.credentialVars...)
		cfg.BaseURL = firstNonEmpty(env("GEMINI_BASE_URL"), cfg.BaseURL)
		cfg.Model = firstNonEmpty(env("GEMINI_MODEL"), cfg.Model, DefaultGeminiModel)
		cfg.EmbeddingModel = firstNonEmpty(env("GEMINI_EMBEDDING_MODEL"), cfg.EmbeddingModel, DefaultGeminiEmbeddingModel)
	default:
		cfg.credentialVars = []string{"OPENAI_API_KEY"}
		cfg.APIKey = firstEnv(cfg.credentialVars...)
		cfg.BaseURL = firstNonEmpty(env("OPENAI_BASE_URL"), cfg.BaseURL)
		cfg.Model = firstNonEmpty(env("OPENAI_MODEL"), cfg.Model, DefaultOpenAIModel)
		cfg.EmbeddingModel = firstNonEmpty(env("OPENAI_EMBEDDING_MODEL"), cfg.EmbeddingModel, DefaultOpenAIEmbeddingModel)
	}
	return Normalize(cfg)
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.EmbeddingModel = strings.TrimSpace(cfg.EmbeddingModel)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	cfg.SystemPrompt = strings.TrimSpace(cfg.SystemPrompt)
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	if cfg.TopK <= 0 {
		cfg.TopK = 2
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1024
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}
	return cfg
}

// RequireCredential reports a missing API key, naming the variable the user has to set.
func (c Config) RequireCredential() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (use %q or %q)", c.Provider, ProviderOpenAI, ProviderGemini)
	}
	if c.APIKey != "" {
		return nil
	}
	vars := c.credentialVars
	if len(vars) == 0 {
		vars = []string{"OPENAI_API_KEY"}
		if c.Provider == ProviderGemini {
			vars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
		}
	}
	return fmt.Errorf("%w: %s is not set. Please check your .env file", ErrMissingCredential, strings.Join(vars, " or "))
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := env(key); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
