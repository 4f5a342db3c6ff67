// Package pipeline orchestrates a document consistency check:
// extract statements, retrieve relevant theorems, detect conflicts,
// aggregate into an analysis and a debug report.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/normlens/normlens/internal/conflict"
	"github.com/normlens/normlens/internal/extract"
	"github.com/normlens/normlens/internal/model"
	"github.com/normlens/normlens/internal/store"
)

// Pipeline runs consistency checks against a shared theorem store.
// It holds no mutable state across calls beyond the store and the
// conflict database, so one pipeline serves concurrent checks.
type Pipeline struct {
	extractor *extract.StatementExtractor
	store     *store.TheoremStore
	engine    *conflict.Engine
	renderer  *Renderer
	config    *model.Config
}

// NewPipeline creates a pipeline over the given theorem store
func NewPipeline(theoremStore *store.TheoremStore, cfg *model.Config) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return &Pipeline{
		extractor: extract.NewStatementExtractor(),
		store:     theoremStore,
		engine:    conflict.NewEngine(),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		config:    cfg,
	}
}

// Engine exposes the maintained conflict database for querying
func (p *Pipeline) Engine() *conflict.Engine {
	return p.engine
}

// Renderer exposes the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// CheckDocument checks one document against the theorem corpus.
// Malformed documents never fail the check: a document that yields no
// statements is consistent by vacuity. The only error path is context
// cancellation.
func (p *Pipeline) CheckDocument(ctx context.Context, documentText, documentID string, temporalContext time.Time, jurisdiction, legalDomain string) (*model.ConsistencyAnalysis, error) {
	statements := p.extractor.ExtractStatements(documentText, documentID)
	return p.check(ctx, statements, documentID, temporalContext, jurisdiction, legalDomain)
}

// CheckHTMLDocument strips markup before extraction, then checks like
// CheckDocument
func (p *Pipeline) CheckHTMLDocument(ctx context.Context, htmlContent, documentID string, temporalContext time.Time, jurisdiction, legalDomain string) (*model.ConsistencyAnalysis, error) {
	statements := p.extractor.ExtractFromHTML(htmlContent, documentID)
	return p.check(ctx, statements, documentID, temporalContext, jurisdiction, legalDomain)
}

func (p *Pipeline) check(ctx context.Context, statements []model.DeonticStatement, documentID string, temporalContext time.Time, jurisdiction, legalDomain string) (*model.ConsistencyAnalysis, error) {
	if temporalContext.IsZero() {
		temporalContext = time.Now().UTC()
	}
	if jurisdiction == "" {
		jurisdiction = p.config.Pipeline.Jurisdiction
	}
	if legalDomain == "" {
		legalDomain = p.config.Pipeline.LegalDomain
	}

	analysis := &model.ConsistencyAnalysis{
		DocumentID:      documentID,
		CheckedAt:       time.Now().UTC(),
		TemporalContext: temporalContext,
		Jurisdiction:    jurisdiction,
		LegalDomain:     legalDomain,
		Statements:      statements,
	}

	if len(statements) == 0 {
		analysis.Result = model.ConsistencyResult{
			IsConsistent:    true,
			ConfidenceScore: 1.0,
		}
		return analysis, nil
	}

	var (
		conflicts         []model.Conflict
		temporalConflicts []model.Conflict
		relevantTheorems  []model.Theorem
		confidences       []float64
		seenTheorems      = make(map[string]bool)
		retrieved         = make([][]model.Theorem, len(statements))
	)

	for _, s := range statements {
		confidences = append(confidences, s.Confidence)
	}

	topK := p.config.Pipeline.TheoremsPerStatement
	for i, s := range statements {
		result, err := p.store.RetrieveRelevantTheorems(ctx, s.Formula(), temporalContext, jurisdiction, legalDomain, topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve theorems for %s: %w", s.ID, err)
		}
		for _, scored := range result.Theorems {
			retrieved[i] = append(retrieved[i], scored.Theorem)

			retrievalConfidence := scored.Theorem.Confidence
			if result.Degraded {
				retrievalConfidence *= p.config.Store.FallbackConfidence
			}
			confidences = append(confidences, retrievalConfidence)

			if !seenTheorems[scored.Theorem.TheoremID] {
				seenTheorems[scored.Theorem.TheoremID] = true
				relevantTheorems = append(relevantTheorems, scored.Theorem)
			}
		}
	}

	record := func(c *model.Conflict) {
		if c.Type == model.ConflictTemporal {
			temporalConflicts = append(temporalConflicts, *c)
			return
		}
		conflicts = append(conflicts, *c)
	}

	// Statement pairs within the document.
	for i := 0; i < len(statements); i++ {
		for j := i + 1; j < len(statements); j++ {
			if c, found := p.engine.FindConflicts(
				conflict.SubjectFromStatement(statements[i]),
				conflict.SubjectFromStatement(statements[j]),
			); found {
				record(c)
			}
		}
	}

	// Each statement against its retrieved precedent.
	for i, s := range statements {
		stmtSubject := conflict.SubjectFromStatement(s)
		for _, theorem := range retrieved[i] {
			if c, found := p.engine.FindConflicts(stmtSubject, conflict.SubjectFromTheorem(theorem)); found {
				record(c)
			}
		}
	}

	analysis.Result = model.ConsistencyResult{
		IsConsistent:      len(conflicts) == 0 && len(temporalConflicts) == 0,
		Conflicts:         conflicts,
		TemporalConflicts: temporalConflicts,
		RelevantTheorems:  relevantTheorems,
		ConfidenceScore:   mean(confidences),
	}
	return analysis, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 1.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// GenerateDebugReport converts an analysis into a severity-ranked,
// human-readable report with remediation suggestions
func (p *Pipeline) GenerateDebugReport(analysis *model.ConsistencyAnalysis) *model.DebugReport {
	report := &model.DebugReport{
		DocumentID: analysis.DocumentID,
	}

	if len(analysis.Statements) == 0 {
		report.Summary = "No deontic statements were extracted from the document; nothing to check."
		return report
	}

	all := make([]model.Conflict, 0, len(analysis.Result.Conflicts)+len(analysis.Result.TemporalConflicts))
	all = append(all, analysis.Result.Conflicts...)
	all = append(all, analysis.Result.TemporalConflicts...)

	seenSuggestions := make(map[string]bool)
	for _, c := range all {
		issue := model.Issue{
			Severity:   c.Severity,
			Category:   categorize(c),
			Message:    c.Description,
			Suggestion: suggestionFor(c),
		}
		report.Issues = append(report.Issues, issue)

		if !seenSuggestions[issue.Suggestion] {
			seenSuggestions[issue.Suggestion] = true
			report.FixSuggestions = append(report.FixSuggestions, issue.Suggestion)
		}
	}

	// Highest severity first; detection order breaks ties.
	sortIssues(report.Issues)

	for _, issue := range report.Issues {
		switch issue.Category {
		case model.CategoryCriticalError:
			report.CriticalErrors++
		case model.CategoryWarning:
			report.Warnings++
		default:
			report.Suggestions++
		}
	}
	report.TotalIssues = len(report.Issues)
	report.Summary = summarize(analysis, report)

	return report
}

// categorize maps high-severity deontic contradictions to critical
// errors and everything else to warnings
func categorize(c model.Conflict) model.IssueCategory {
	if c.Severity == model.SeverityHigh &&
		(c.Type == model.ConflictObligationProhibition || c.Type == model.ConflictPermissionProhibition) {
		return model.CategoryCriticalError
	}
	return model.CategoryWarning
}

func suggestionFor(c model.Conflict) string {
	a, b := clauseRef(c.A), clauseRef(c.B)
	switch c.Type {
	case model.ConflictObligationProhibition:
		return fmt.Sprintf("Clarify precedence between %s and %s; one of them must yield.", a, b)
	case model.ConflictPermissionProhibition:
		return fmt.Sprintf("Narrow the permission in %s or carve an explicit exception into %s.", a, b)
	case model.ConflictTemporal:
		return fmt.Sprintf("Align the validity windows of %s and %s or add a transition provision.", a, b)
	case model.ConflictJurisdictional:
		return fmt.Sprintf("State which jurisdiction controls when %s and %s both apply.", a, b)
	}
	return fmt.Sprintf("Review %s and %s together and resolve the contradiction.", a, b)
}

func clauseRef(side model.ConflictSide) string {
	if side.StatementID != "" {
		return "clause " + side.StatementID
	}
	if side.TheoremID != "" {
		return "precedent " + side.TheoremID
	}
	return "the clause"
}

func sortIssues(issues []model.Issue) {
	// Insertion sort keeps detection order within a severity band.
	for i := 1; i < len(issues); i++ {
		for j := i; j > 0 && issues[j].Severity.Rank() > issues[j-1].Severity.Rank(); j-- {
			issues[j], issues[j-1] = issues[j-1], issues[j]
		}
	}
}

func summarize(analysis *model.ConsistencyAnalysis, report *model.DebugReport) string {
	if report.TotalIssues == 0 {
		return fmt.Sprintf("Document %s is consistent: %d statement(s) checked, no conflicts found.",
			analysis.DocumentID, len(analysis.Statements))
	}

	parts := []string{}
	if report.CriticalErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d critical", report.CriticalErrors))
	}
	if report.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", report.Warnings))
	}
	if report.Suggestions > 0 {
		parts = append(parts, fmt.Sprintf("%d suggestion(s)", report.Suggestions))
	}
	return fmt.Sprintf("Document %s has %d issue(s): %s.",
		analysis.DocumentID, report.TotalIssues, strings.Join(parts, ", "))
}
