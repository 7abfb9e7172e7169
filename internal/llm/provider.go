package llm

import (
	"context"
	"time"
)

// Provider defines the interface for text-generation backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete generates a response for the prompt. Throttling and
	// quota failures are returned as *TransientError; anything else
	// is permanent.
	Complete(ctx context.Context, prompt, systemPrompt string) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds generation backend configuration
type Config struct {
	// Provider name: "gemini", "openai"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the backend
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout per API request
	Timeout time.Duration

	// RequestsPerMinute bounds the outbound call rate across all
	// concurrent callers sharing one gateway
	RequestsPerMinute int

	// MaxRetries bounds retry attempts on throttling errors
	MaxRetries int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "gemini",
		Model:             "gemini-2.0-flash",
		Timeout:           60 * time.Second,
		RequestsPerMinute: 20, // under Gemini's 25/min free-tier quota
		MaxRetries:        3,
	}
}
