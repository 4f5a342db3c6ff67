package embed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/normlens/normlens/internal/cache"
)

// CachingProvider memoizes embeddings keyed by provider, model, and text.
// Providers are deterministic for identical input within a session, so a
// cache hit is exact.
type CachingProvider struct {
	inner Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCachingProvider wraps a provider with an embedding cache
func NewCachingProvider(inner Provider, c cache.Cache, ttl time.Duration) *CachingProvider {
	return &CachingProvider{inner: inner, cache: c, ttl: ttl}
}

// Name returns the wrapped provider name
func (p *CachingProvider) Name() string { return p.inner.Name() }

// Dimensions returns the wrapped provider dimensionality
func (p *CachingProvider) Dimensions() int { return p.inner.Dimensions() }

// Embed returns the cached vector when present, otherwise delegates and
// stores the result. Cache errors are ignored: the embedding still
// succeeds without the cache.
func (p *CachingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(p.inner.Name() + ":" + text)

	if data, found := p.cache.Get(key); found {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil {
			return vec, nil
		}
	}

	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		_ = p.cache.Set(key, data, p.ttl)
	}

	return vec, nil
}
