package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/chronicler/internal/cache"
	"github.com/ppiankov/chronicler/internal/ingest"
	"github.com/ppiankov/chronicler/internal/llm"
	"github.com/ppiankov/chronicler/internal/model"
	"github.com/ppiankov/chronicler/internal/store"
)

// loadConfig builds the effective configuration from defaults, config
// file, and environment (CHRONICLER_* via viper, API keys from their
// conventional variables).
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("store.data_dir"); v != "" {
		cfg.Store.DataDir = v
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetInt("llm.requests_per_minute"); v > 0 {
		cfg.LLM.RequestsPerMinute = v
	}
	if v := viper.GetInt("llm.max_retries"); v > 0 {
		cfg.LLM.MaxRetries = v
	}
	if v := viper.GetInt("extraction.max_concurrent"); v > 0 {
		cfg.Extraction.MaxConcurrent = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	cfg.Output.Verbose = verbose

	cfg.Ingest.APIKey = firstEnv("CHRONICLER_NYT_API_KEY", "NYT_API_KEY")
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	default:
		cfg.LLM.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	}

	return cfg
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// newGateway builds the generation gateway from config
func newGateway(ctx context.Context, cfg *model.Config) (*llm.Gateway, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("no API key for LLM provider %q (set GEMINI_API_KEY or OPENAI_API_KEY)", cfg.LLM.Provider)
	}

	provider, err := llm.NewProvider(ctx, llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	var opts []llm.Option
	if cfg.Cache.Enabled {
		c := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		opts = append(opts, llm.WithCache(c, cfg.Cache.DiskTTL))
	}

	return llm.NewGateway(provider, llm.ConfigFromModel(cfg.LLM), opts...), nil
}

// newIngestClient builds the article source client from config
func newIngestClient(cfg *model.Config) (*ingest.Client, error) {
	if cfg.Ingest.APIKey == "" {
		return nil, fmt.Errorf("CHRONICLER_NYT_API_KEY environment variable not set")
	}

	var opts []ingest.ClientOption
	if cfg.Ingest.RequestsPerMinute > 0 {
		opts = append(opts, ingest.WithRequestsPerMinute(cfg.Ingest.RequestsPerMinute))
	}
	if cfg.Cache.Enabled {
		// Past months never change, so archives keep for a long time
		opts = append(opts, ingest.WithArchiveCache(cache.NewDiskCache(cfg.Cache.Dir, 90*24*time.Hour)))
	}

	return ingest.NewClient(cfg.Ingest.APIKey, opts...), nil
}

// openStore opens the knowledge store from config
func openStore(cfg *model.Config) (*store.Store, error) {
	s, err := store.New(cfg.Store.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}
