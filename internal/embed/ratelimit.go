package embed

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a remote provider with a token-bucket rate
// limiter, so corpus ingestion cannot exhaust an API quota
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps a provider with the given request rate
func NewRateLimitedProvider(inner Provider, requestsPerSecond float64, burst int) *RateLimitedProvider {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Name returns the wrapped provider name
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

// Dimensions returns the wrapped provider dimensionality
func (p *RateLimitedProvider) Dimensions() int { return p.inner.Dimensions() }

// Embed waits for rate limit clearance, then delegates
func (p *RateLimitedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrEmbedding, err)
	}
	return p.inner.Embed(ctx, text)
}
