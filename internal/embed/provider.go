// Package embed provides vector embedding generation for semantic theorem
// retrieval. Providers: OpenAI (API), Ollama (local), and a deterministic
// hash embedder for offline use.
package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/normlens/normlens/internal/cache"
	"github.com/normlens/normlens/internal/model"
)

// ErrEmbedding marks provider failures. Callers that can degrade to
// metadata-only ranking test for it with errors.Is.
var ErrEmbedding = errors.New("embedding failed")

// Provider defines the interface for embedding providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Embed generates an embedding vector for the text. Deterministic for
	// identical input within a session.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of produced vectors
	Dimensions() int
}

// Config holds embedding provider configuration
type Config struct {
	// Provider name: "hash", "openai", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// Dimensions for the hash embedder
	Dimensions int

	// RequestsPerSecond rate-limits remote providers (0 = unlimited)
	RequestsPerSecond float64
	Burst             int

	// Cache settings
	CacheEnabled bool
	CacheDir     string
	CacheTTL     time.Duration
}

// ConfigFromModel converts the application config section
func ConfigFromModel(c model.EmbeddingConfig) Config {
	return Config{
		Provider:          c.Provider,
		Model:             c.Model,
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		Dimensions:        c.Dimensions,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		CacheEnabled:      c.CacheEnabled,
		CacheDir:          c.CacheDir,
		CacheTTL:          c.CacheTTL,
	}
}

// NewProvider creates an embedding provider from configuration. Remote
// providers are wrapped with rate limiting and caching as configured.
func NewProvider(cfg Config) (Provider, error) {
	var p Provider
	var err error

	switch cfg.Provider {
	case "", "hash":
		p = NewHashProvider(cfg.Dimensions)
	case "openai":
		p, err = NewOpenAIProvider(cfg)
	case "ollama":
		p, err = NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q (use hash, openai, or ollama)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	remote := cfg.Provider == "openai" || cfg.Provider == "ollama"
	if remote && cfg.RequestsPerSecond > 0 {
		p = NewRateLimitedProvider(p, cfg.RequestsPerSecond, cfg.Burst)
	}
	if cfg.CacheEnabled {
		p = NewCachingProvider(p, newVectorCache(cfg), cfg.CacheTTL)
	}

	return p, nil
}

func newVectorCache(cfg Config) cache.Cache {
	if cfg.CacheDir != "" {
		return cache.NewLayeredCache(cfg.CacheTTL, cfg.CacheDir, cfg.CacheTTL)
	}
	return cache.NewMemoryCache(cfg.CacheTTL, 10*time.Minute)
}
