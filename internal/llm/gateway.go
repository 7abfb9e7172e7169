package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/chronicler/internal/cache"
)

// Gateway wraps a Provider with rate limiting, bounded retry on
// throttling errors, and optional response caching. It is the only
// component that talks to the generation backend.
type Gateway struct {
	provider   Provider
	model      string
	limiter    *Limiter
	maxRetries int
	backoff    time.Duration // per-attempt backoff unit
	cache      cache.Cache   // nil disables caching
	cacheTTL   time.Duration
}

// Option configures a Gateway
type Option func(*Gateway)

// WithCache enables response caching. Identical prompts hit the cache
// instead of the backend, which makes re-ingesting the same articles
// free.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// WithBackoff overrides the per-attempt backoff unit (default 10s)
func WithBackoff(d time.Duration) Option {
	return func(g *Gateway) {
		g.backoff = d
	}
}

// NewGateway creates a gateway around the given provider
func NewGateway(provider Provider, cfg Config, opts ...Option) *Gateway {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	g := &Gateway{
		provider:   provider,
		model:      cfg.Model,
		limiter:    NewLimiter(cfg.RequestsPerMinute),
		maxRetries: maxRetries,
		backoff:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces text for the prompt. Throttling errors are retried
// up to maxRetries times with linearly increasing backoff; any other
// error propagates immediately. Exhausting retries returns
// *RetryExhaustedError.
func (g *Gateway) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var cacheKey string
	if g.cache != nil {
		// Keyed by backend and model too, so switching models never
		// serves another model's answer for the same prompt.
		cacheKey = cache.Key("llm", g.provider.Name()+"\x00"+g.model+"\x00"+systemPrompt+"\x00"+prompt)
		if data, found := g.cache.Get(cacheKey); found {
			return string(data), nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		// Every attempt waits on the limiter, retries included, so the
		// outbound request rate never exceeds the configured ceiling.
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		text, err := g.provider.Complete(ctx, prompt, systemPrompt)
		if err == nil {
			if g.cache != nil {
				_ = g.cache.Set(cacheKey, []byte(text), g.cacheTTL)
			}
			return text, nil
		}

		if !IsTransient(err) {
			return "", fmt.Errorf("%s: %w", g.provider.Name(), err)
		}

		lastErr = err
		if attempt == g.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * g.backoff):
		}
	}

	return "", &RetryExhaustedError{Attempts: g.maxRetries, Last: lastErr}
}

// IsAvailable reports whether the underlying provider is reachable
func (g *Gateway) IsAvailable(ctx context.Context) bool {
	return g.provider.IsAvailable(ctx)
}
