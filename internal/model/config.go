package model

import "time"

// Config holds the complete chronicler configuration
type Config struct {
	Ingest     IngestConfig     `yaml:"ingest"`
	LLM        LLMConfig        `yaml:"llm"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Store      StoreConfig      `yaml:"store"`
	Cache      CacheConfig      `yaml:"cache"`
	Output     OutputConfig     `yaml:"output"`
}

// IngestConfig configures the article source client
type IngestConfig struct {
	APIKey            string        `yaml:"api_key,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

// LLMConfig configures the generation backend
type LLMConfig struct {
	Provider          string        `yaml:"provider"` // "gemini" or "openai"
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"api_key,omitempty"`
	BaseURL           string        `yaml:"base_url,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries"`
	Timeout           time.Duration `yaml:"timeout"`
}

// ExtractionConfig configures the extraction orchestrator
type ExtractionConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// StoreConfig configures the knowledge store
type StoreConfig struct {
	DataDir string `yaml:"data_dir"`
}

// CacheConfig configures response caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// OutputConfig configures CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			RequestsPerMinute: 5, // NYT-style APIs allow 5 req/min
			Timeout:           60 * time.Second,
		},
		LLM: LLMConfig{
			Provider:          "gemini",
			Model:             "gemini-2.0-flash",
			RequestsPerMinute: 20,
			MaxRetries:        3,
			Timeout:           60 * time.Second,
		},
		Extraction: ExtractionConfig{
			MaxConcurrent: 5,
		},
		Store: StoreConfig{
			DataDir: "data",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".chronicler-cache",
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
