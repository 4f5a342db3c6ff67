// Package store indexes theorems (formula + metadata + embedding) and
// answers similarity and filter queries. The index is append-oriented:
// theorems are never mutated or retired, only superseded by newer entries.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/normlens/normlens/internal/embed"
	"github.com/normlens/normlens/internal/model"
)

// TheoremStore is a caller-owned, concurrency-safe precedent index.
// Reads take a snapshot of the append-only slice under RLock, so unlimited
// concurrent readers proceed while writers append; a reader that started
// before an insert is not required to see it.
type TheoremStore struct {
	mu       sync.RWMutex
	theorems []model.Theorem

	provider embed.Provider
	cfg      model.StoreConfig
}

// NewTheoremStore creates an empty store backed by the given embedding
// provider
func NewTheoremStore(provider embed.Provider, cfg model.StoreConfig) *TheoremStore {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 10
	}
	if cfg.FallbackConfidence <= 0 {
		cfg.FallbackConfidence = 0.5
	}
	return &TheoremStore{
		provider: provider,
		cfg:      cfg,
	}
}

// AddTheorem indexes a new theorem and returns its opaque stable id.
// An embedding provider failure does not fail the insert: the theorem is
// stored without a vector at reduced confidence and participates in
// metadata-only ranking.
func (s *TheoremStore) AddTheorem(ctx context.Context, formula model.Formula, scope model.TemporalScope, jurisdiction, legalDomain, sourceCase string, precedentStrength float64) (string, error) {
	if formula == nil {
		return "", fmt.Errorf("formula is required")
	}
	if op := formula.Deontic().Operator; !op.Valid() {
		return "", fmt.Errorf("invalid deontic operator: %q", op)
	}
	if precedentStrength < 0 || precedentStrength > 1 {
		return "", fmt.Errorf("precedent strength must be in [0,1], got %f", precedentStrength)
	}

	confidence := formula.Deontic().Confidence
	if confidence <= 0 {
		confidence = 1.0
	}

	embedding, err := s.provider.Embed(ctx, formula.Text())
	if err != nil {
		embedding = nil
		confidence *= s.cfg.FallbackConfidence
	}

	theorem := model.Theorem{
		TheoremID:         uuid.NewString(),
		Formula:           formula,
		Embedding:         embedding,
		TemporalScope:     scope,
		Jurisdiction:      jurisdiction,
		LegalDomain:       legalDomain,
		SourceCase:        sourceCase,
		PrecedentStrength: precedentStrength,
		Confidence:        confidence,
	}

	s.mu.Lock()
	s.theorems = append(s.theorems, theorem)
	s.mu.Unlock()

	return theorem.TheoremID, nil
}

// snapshot returns a consistent view of the index. The returned slice
// header is safe to read without the lock: writers only append.
func (s *TheoremStore) snapshot() []model.Theorem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theorems
}

// Len returns the number of indexed theorems
func (s *TheoremStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.theorems)
}

// Statistics summarizes the indexed corpus
func (s *TheoremStore) Statistics() model.StoreStatistics {
	theorems := s.snapshot()

	stats := model.StoreStatistics{
		TotalTheorems: len(theorems),
		Jurisdictions: make(map[string]int),
		LegalDomains:  make(map[string]int),
	}

	var strengthSum float64
	for _, t := range theorems {
		stats.Jurisdictions[t.Jurisdiction]++
		stats.LegalDomains[t.LegalDomain]++
		strengthSum += t.PrecedentStrength
	}
	if len(theorems) > 0 {
		stats.AvgPrecedentStrength = strengthSum / float64(len(theorems))
	}

	return stats
}

// RetrieveRelevantTheorems ranks the whole corpus against a query formula
// in its jurisdiction, domain, and temporal context. Operator and metadata
// agreement contribute to the score, they never filter.
func (s *TheoremStore) RetrieveRelevantTheorems(ctx context.Context, query model.DeonticFormula, temporalContext time.Time, jurisdiction, legalDomain string, topK int) (RetrievalResult, error) {
	op := query.Operator
	return s.QuerySimilarTheorems(ctx, query.Proposition, QueryOptions{
		TopK:              topK,
		Operator:          &op,
		QueryJurisdiction: jurisdiction,
		QueryLegalDomain:  legalDomain,
		TemporalContext:   temporalContext,
	})
}
