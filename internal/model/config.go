package model

import "time"

// Config is the top-level normlens configuration.
// Loaded from ~/.normlens/config.yaml, NORMLENS_* env vars, and CLI flags.
type Config struct {
	Embedding   EmbeddingConfig   `yaml:"embedding" json:"embedding"`
	Store       StoreConfig       `yaml:"store" json:"store"`
	Pipeline    PipelineConfig    `yaml:"pipeline" json:"pipeline"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// EmbeddingConfig selects and tunes the embedding provider
type EmbeddingConfig struct {
	Provider          string        `yaml:"provider" json:"provider"` // "hash", "openai", "ollama"
	Model             string        `yaml:"model" json:"model"`
	APIKey            string        `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL           string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	Dimensions        int           `yaml:"dimensions" json:"dimensions"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int           `yaml:"burst" json:"burst"`
	CacheEnabled      bool          `yaml:"cache_enabled" json:"cache_enabled"`
	CacheDir          string        `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
	CacheTTL          time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// StoreConfig tunes retrieval behavior
type StoreConfig struct {
	DefaultTopK        int     `yaml:"default_top_k" json:"default_top_k"`
	MinSimilarity      float64 `yaml:"min_similarity" json:"min_similarity"`
	InactivePenalty    float64 `yaml:"inactive_penalty" json:"inactive_penalty"`
	FallbackConfidence float64 `yaml:"fallback_confidence" json:"fallback_confidence"`
}

// PipelineConfig tunes the consistency check
type PipelineConfig struct {
	Jurisdiction         string `yaml:"jurisdiction" json:"jurisdiction"`
	LegalDomain          string `yaml:"legal_domain" json:"legal_domain"`
	TheoremsPerStatement int    `yaml:"theorems_per_statement" json:"theorems_per_statement"`
}

// ConcurrencyConfig controls bulk ingestion workers
type ConcurrencyConfig struct {
	IngestWorkers int `yaml:"ingest_workers" json:"ingest_workers"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:          "hash",
			Model:             "",
			Timeout:           30 * time.Second,
			Dimensions:        256,
			RequestsPerSecond: 5,
			Burst:             5,
			CacheEnabled:      true,
			CacheTTL:          24 * time.Hour,
		},
		Store: StoreConfig{
			DefaultTopK:        10,
			MinSimilarity:      0.5,
			InactivePenalty:    0.5,
			FallbackConfidence: 0.5,
		},
		Pipeline: PipelineConfig{
			Jurisdiction:         "Federal",
			LegalDomain:          "general",
			TheoremsPerStatement: 5,
		},
		Concurrency: ConcurrencyConfig{
			IngestWorkers: 4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
