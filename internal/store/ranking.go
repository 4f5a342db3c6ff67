package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/normlens/normlens/internal/embed"
	"github.com/normlens/normlens/internal/model"
)

// Ranking weights. Similarity dominates; operator agreement, temporal
// activity and jurisdiction/domain agreement refine the order.
const (
	weightSimilarity = 0.6
	weightOperator   = 0.2
	weightTemporal   = 0.1
	weightMetadata   = 0.1
)

// QueryOptions narrows and orders a similarity query. Absent filters
// match everything; filters that are present must all hold.
type QueryOptions struct {
	// TopK caps the result size. Zero means the store default.
	TopK int

	// MinSimilarity drops candidates below the threshold. Nil disables
	// the threshold entirely (used by formula retrieval, which ranks the
	// whole corpus).
	MinSimilarity *float64

	// OperatorFilter keeps only theorems with this deontic operator.
	OperatorFilter *model.DeonticOperator

	// Operator is the query's own operator, used for the operator-match
	// ranking component without excluding mismatches. Falls back to
	// OperatorFilter when nil.
	Operator *model.DeonticOperator

	// Jurisdiction and LegalDomain filter by exact match when non-empty.
	Jurisdiction string
	LegalDomain  string

	// QueryJurisdiction and QueryLegalDomain describe the query itself
	// and feed the metadata ranking component without excluding
	// mismatches. They fall back to the filter values when empty.
	QueryJurisdiction string
	QueryLegalDomain  string

	// TemporalContext is the instant used to judge scope activity.
	// Zero means now.
	TemporalContext time.Time
}

// RetrievalResult carries ranked theorems plus a degraded flag set when
// the embedding provider failed and the ranking is metadata-only.
type RetrievalResult struct {
	Theorems []model.ScoredTheorem
	Degraded bool
}

// QuerySimilarTheorems embeds the query text, filters the corpus and
// returns the top matches by blended score. The only error path is an
// invalid option; embedding failures degrade to metadata-only ranking.
func (s *TheoremStore) QuerySimilarTheorems(ctx context.Context, queryText string, opts QueryOptions) (RetrievalResult, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	at := opts.TemporalContext
	if at.IsZero() {
		at = time.Now().UTC()
	}
	scoringOp := opts.Operator
	if scoringOp == nil {
		scoringOp = opts.OperatorFilter
	}
	scoringJurisdiction := opts.QueryJurisdiction
	if scoringJurisdiction == "" {
		scoringJurisdiction = opts.Jurisdiction
	}
	scoringDomain := opts.QueryLegalDomain
	if scoringDomain == "" {
		scoringDomain = opts.LegalDomain
	}

	var result RetrievalResult

	queryVec, err := s.provider.Embed(ctx, queryText)
	if err != nil {
		if !errors.Is(err, embed.ErrEmbedding) && ctx.Err() != nil {
			return RetrievalResult{}, ctx.Err()
		}
		queryVec = nil
		result.Degraded = true
	}

	candidates := s.snapshot()
	scored := make([]model.ScoredTheorem, 0, len(candidates))

	for _, theorem := range candidates {
		if opts.OperatorFilter != nil && theorem.Formula.Deontic().Operator != *opts.OperatorFilter {
			continue
		}
		if opts.Jurisdiction != "" && theorem.Jurisdiction != opts.Jurisdiction {
			continue
		}
		if opts.LegalDomain != "" && theorem.LegalDomain != opts.LegalDomain {
			continue
		}

		similarity := 0.0
		if queryVec != nil && theorem.Embedding != nil {
			if sim, err := embed.CosineSimilarity(queryVec, theorem.Embedding); err == nil {
				similarity = sim
			}
		}
		// The threshold only applies when similarity is real. A degraded
		// query ranks on metadata instead of returning nothing.
		if opts.MinSimilarity != nil && queryVec != nil && similarity < *opts.MinSimilarity {
			continue
		}

		scored = append(scored, model.ScoredTheorem{
			Theorem:    theorem,
			Similarity: similarity,
			Score:      s.score(similarity, scoringOp, at, scoringJurisdiction, scoringDomain, theorem),
		})
	}

	// Stable sort keeps insertion order as the final tie-break after
	// score and precedent strength.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Theorem.PrecedentStrength > scored[j].Theorem.PrecedentStrength
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	result.Theorems = scored

	return result, nil
}

// score blends similarity with symbolic agreement between the query and
// a candidate theorem
func (s *TheoremStore) score(similarity float64, operator *model.DeonticOperator, at time.Time, jurisdiction, legalDomain string, theorem model.Theorem) float64 {
	operatorMatch := 0.0
	if operator != nil && theorem.Formula.Deontic().Operator == *operator {
		operatorMatch = 1.0
	}

	activity := s.cfg.InactivePenalty
	if theorem.TemporalScope.ActiveAt(at) {
		activity = 1.0
	}

	metadataMatch := 0.0
	if jurisdiction != "" && theorem.Jurisdiction == jurisdiction {
		metadataMatch += 0.5
	}
	if legalDomain != "" && theorem.LegalDomain == legalDomain {
		metadataMatch += 0.5
	}

	return weightSimilarity*similarity +
		weightOperator*operatorMatch +
		weightTemporal*activity +
		weightMetadata*metadataMatch
}
