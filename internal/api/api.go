// Package api is the flat-parameter envelope layer exposed to CLI and
// integration callers. Every operation returns a structured envelope;
// input problems get a stable error code and nothing, not even a panic
// in the layers below, crosses the boundary unwrapped.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/normlens/normlens/internal/model"
	"github.com/normlens/normlens/internal/pipeline"
	"github.com/normlens/normlens/internal/store"
	"github.com/normlens/normlens/internal/validate"
)

// Stable error codes. Callers dispatch on these, never on error text.
const (
	CodeMissingDocumentText = "MISSING_DOCUMENT_TEXT"
	CodeMissingQuery        = "MISSING_QUERY"
	CodeMissingProposition  = "MISSING_PROPOSITION"
	CodeProcessingError     = "PROCESSING_ERROR"
	CodeQueryError          = "QUERY_ERROR"
)

// Envelope is the common response wrapper
type Envelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

func failure(code, message string) Envelope {
	return Envelope{Success: false, Error: message, ErrorCode: code}
}

// API wires the pipeline and store behind the envelope contract
type API struct {
	pipeline *pipeline.Pipeline
	store    *store.TheoremStore
	config   *model.Config
}

// New creates the envelope layer
func New(p *pipeline.Pipeline, s *store.TheoremStore, cfg *model.Config) *API {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return &API{pipeline: p, store: s, config: cfg}
}

// CheckRequest are the flat parameters of a consistency check.
// TemporalContext accepts RFC 3339, a plain date, or "current_time".
type CheckRequest struct {
	DocumentText    string `json:"document_text"`
	DocumentID      string `json:"document_id,omitempty"`
	Jurisdiction    string `json:"jurisdiction,omitempty"`
	LegalDomain     string `json:"legal_domain,omitempty"`
	TemporalContext string `json:"temporal_context,omitempty"`
}

// CheckResponse carries the analysis and its debug report
type CheckResponse struct {
	Envelope
	Analysis *model.ConsistencyAnalysis `json:"analysis,omitempty"`
	Report   *model.DebugReport         `json:"report,omitempty"`
}

// CheckDocumentConsistency runs a full document check
func (a *API) CheckDocumentConsistency(ctx context.Context, req CheckRequest) (resp CheckResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = CheckResponse{Envelope: failure(CodeProcessingError, fmt.Sprintf("internal error: %v", r))}
		}
	}()

	if strings.TrimSpace(req.DocumentText) == "" {
		return CheckResponse{Envelope: failure(CodeMissingDocumentText, "document_text is required")}
	}

	at, err := parseTemporalContext(req.TemporalContext)
	if err != nil {
		return CheckResponse{Envelope: failure(CodeProcessingError, err.Error())}
	}

	documentID := req.DocumentID
	if documentID == "" {
		documentID = "doc_" + uuid.NewString()
	}

	analysis, err := a.pipeline.CheckDocument(ctx, req.DocumentText, documentID, at, req.Jurisdiction, req.LegalDomain)
	if err != nil {
		return CheckResponse{Envelope: failure(CodeProcessingError, err.Error())}
	}

	return CheckResponse{
		Envelope: Envelope{Success: true},
		Analysis: analysis,
		Report:   a.pipeline.GenerateDebugReport(analysis),
	}
}

// QueryRequest are the flat parameters of a theorem query. "all" (or
// empty) filters match everything. A nil MinRelevance uses the
// configured default threshold.
type QueryRequest struct {
	Query          string   `json:"query"`
	OperatorFilter string   `json:"operator_filter,omitempty"`
	Jurisdiction   string   `json:"jurisdiction,omitempty"`
	LegalDomain    string   `json:"legal_domain,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	MinRelevance   *float64 `json:"min_relevance,omitempty"`
}

// QueryResponse carries the ranked matches
type QueryResponse struct {
	Envelope
	Results  []model.ScoredTheorem `json:"results,omitempty"`
	Degraded bool                  `json:"degraded,omitempty"`
}

// QueryTheorems runs a similarity query over the theorem store
func (a *API) QueryTheorems(ctx context.Context, req QueryRequest) (resp QueryResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = QueryResponse{Envelope: failure(CodeQueryError, fmt.Sprintf("internal error: %v", r))}
		}
	}()

	if strings.TrimSpace(req.Query) == "" {
		return QueryResponse{Envelope: failure(CodeMissingQuery, "query is required")}
	}

	opts := store.QueryOptions{
		TopK:         req.Limit,
		Jurisdiction: matchAll(req.Jurisdiction),
		LegalDomain:  matchAll(req.LegalDomain),
	}

	if filter := matchAll(req.OperatorFilter); filter != "" {
		op, err := validate.ParseOperator(filter)
		if err != nil {
			return QueryResponse{Envelope: failure(CodeQueryError, err.Error())}
		}
		opts.OperatorFilter = &op
	}

	minRelevance := a.config.Store.MinSimilarity
	if req.MinRelevance != nil {
		minRelevance = *req.MinRelevance
	}
	opts.MinSimilarity = &minRelevance

	result, err := a.store.QuerySimilarTheorems(ctx, req.Query, opts)
	if err != nil {
		return QueryResponse{Envelope: failure(CodeQueryError, err.Error())}
	}

	return QueryResponse{
		Envelope: Envelope{Success: true},
		Results:  result.Theorems,
		Degraded: result.Degraded,
	}
}

// AddRequest are the flat parameters for indexing one theorem.
// StartDate/EndDate accept RFC 3339 or a plain date; an empty EndDate
// means unbounded.
type AddRequest struct {
	Operator          string  `json:"operator"`
	Proposition       string  `json:"proposition"`
	AgentName         string  `json:"agent_name,omitempty"`
	Jurisdiction      string  `json:"jurisdiction,omitempty"`
	LegalDomain       string  `json:"legal_domain,omitempty"`
	SourceCase        string  `json:"source_case,omitempty"`
	PrecedentStrength float64 `json:"precedent_strength"`
	StartDate         string  `json:"start_date,omitempty"`
	EndDate           string  `json:"end_date,omitempty"`
}

// AddResponse carries the new theorem id
type AddResponse struct {
	Envelope
	TheoremID string `json:"theorem_id,omitempty"`
}

// addedConfidence is assigned to theorems entered through this layer;
// they are curated assertions, not extraction guesses.
const addedConfidence = 0.9

// AddTheorem validates the flat parameters and indexes a theorem
func (a *API) AddTheorem(ctx context.Context, req AddRequest) (resp AddResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = AddResponse{Envelope: failure(CodeProcessingError, fmt.Sprintf("internal error: %v", r))}
		}
	}()

	if strings.TrimSpace(req.Proposition) == "" {
		return AddResponse{Envelope: failure(CodeMissingProposition, "proposition is required")}
	}

	op, err := validate.ParseOperator(req.Operator)
	if err != nil {
		return AddResponse{Envelope: failure(CodeProcessingError, err.Error())}
	}

	scope, err := validate.ParseScope(req.StartDate, req.EndDate)
	if err != nil {
		return AddResponse{Envelope: failure(CodeProcessingError, err.Error())}
	}

	var agent *model.LegalAgent
	if req.AgentName != "" {
		agent = &model.LegalAgent{ID: strings.ToLower(req.AgentName), Name: req.AgentName, Kind: model.AgentRole}
	}

	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = a.config.Pipeline.Jurisdiction
	}
	legalDomain := req.LegalDomain
	if legalDomain == "" {
		legalDomain = a.config.Pipeline.LegalDomain
	}

	formula := model.NewDeonticFormula(op, req.Proposition, agent, addedConfidence, req.Proposition)

	id, err := a.store.AddTheorem(ctx, formula, scope, jurisdiction, legalDomain, req.SourceCase, req.PrecedentStrength)
	if err != nil {
		return AddResponse{Envelope: failure(CodeProcessingError, err.Error())}
	}

	return AddResponse{Envelope: Envelope{Success: true}, TheoremID: id}
}

// Statistics returns corpus statistics; it cannot fail
func (a *API) Statistics() model.StoreStatistics {
	return a.store.Statistics()
}

func matchAll(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "all") {
		return ""
	}
	return strings.TrimSpace(v)
}

func parseTemporalContext(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "current_time") {
		return time.Now().UTC(), nil
	}
	return validate.ParseDate("temporal_context", v)
}
