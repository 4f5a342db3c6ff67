// Package conflict detects logical incompatibilities between deontic
// statements and stored theorems. Detection is symbolic: an ordered rule
// set over operators, temporal scopes, and jurisdictions, applied to
// pairs whose propositions and agents already match.
package conflict

import (
	"fmt"
	"strings"
	"sync"

	"github.com/normlens/normlens/internal/model"
)

// Subject is one side of a potential conflict, either an extracted
// statement or a stored theorem. TheoremID and PrecedentStrength are set
// only for theorems.
type Subject struct {
	StatementID       string
	TheoremID         string
	Entity            string
	Action            string
	Operator          model.DeonticOperator
	Confidence        float64
	SourceText        string
	Scope             *model.TemporalScope
	Jurisdiction      string
	PrecedentStrength float64
}

// SubjectFromStatement adapts an extracted statement for conflict checks
func SubjectFromStatement(s model.DeonticStatement) Subject {
	f := s.Formula()
	return Subject{
		StatementID: s.ID,
		Entity:      s.Entity,
		Action:      s.Action,
		Operator:    f.Operator,
		Confidence:  s.Confidence,
		SourceText:  s.SourceText,
	}
}

// SubjectFromTheorem adapts a stored theorem for conflict checks
func SubjectFromTheorem(t model.Theorem) Subject {
	deontic := t.Formula.Deontic()
	entity := ""
	if deontic.Agent != nil {
		entity = deontic.Agent.ID
	}
	scope := t.TemporalScope
	return Subject{
		TheoremID:         t.TheoremID,
		Entity:            entity,
		Action:            deontic.Proposition,
		Operator:          deontic.Operator,
		Confidence:        t.Confidence,
		SourceText:        deontic.SourceText,
		Scope:             &scope,
		Jurisdiction:      t.Jurisdiction,
		PrecedentStrength: t.PrecedentStrength,
	}
}

func (s Subject) formula() model.DeonticFormula {
	var agent *model.LegalAgent
	if s.Entity != "" {
		agent = &model.LegalAgent{ID: s.Entity, Name: s.Entity, Kind: model.AgentRole}
	}
	return model.NewDeonticFormula(s.Operator, s.Action, agent, s.Confidence, s.SourceText)
}

func (s Subject) side() model.ConflictSide {
	return model.ConflictSide{
		StatementID: s.StatementID,
		TheoremID:   s.TheoremID,
		Entity:      s.Entity,
		Action:      s.Action,
		Operator:    s.Operator,
		SourceText:  s.SourceText,
	}
}

// Engine applies the pairwise rule set and maintains the database of
// every conflict it has found, for later querying.
type Engine struct {
	mu        sync.Mutex
	conflicts []model.Conflict
}

// NewEngine creates an engine with an empty conflict database
func NewEngine() *Engine {
	return &Engine{}
}

// FindConflicts checks one pair. Rules are applied in a fixed order and
// the first match wins. A detected conflict is recorded in the engine's
// database. The result does not depend on argument order.
func (e *Engine) FindConflicts(a, b Subject) (*model.Conflict, bool) {
	if !a.formula().PotentialConflict(b.formula()) {
		return nil, false
	}

	c, ok := e.classify(a, b)
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	e.conflicts = append(e.conflicts, c)
	e.mu.Unlock()

	return &c, true
}

func (e *Engine) classify(a, b Subject) (model.Conflict, bool) {
	// Orient deontic mismatches so the prohibition is always side B.
	// This keeps descriptions and recorded sides identical whichever
	// order the pair arrives in.
	if a.Operator == model.Prohibition && b.Operator != model.Prohibition {
		a, b = b, a
	}

	switch {
	case a.Operator == model.Obligation && b.Operator == model.Prohibition:
		return e.build(model.ConflictObligationProhibition, a, b,
			fmt.Sprintf("%s is both obliged and prohibited to %s", entityLabel(a, b), actionLabel(a, b))), true

	case a.Operator == model.Permission && b.Operator == model.Prohibition:
		return e.build(model.ConflictPermissionProhibition, a, b,
			fmt.Sprintf("%s is permitted to %s while a prohibition forbids it", entityLabel(a, b), actionLabel(a, b))), true

	case a.Operator == b.Operator && scopesDisjoint(a, b):
		return e.build(model.ConflictTemporal, a, b,
			fmt.Sprintf("requirements on %q hold in validity windows that never overlap", actionLabel(a, b))), true

	case a.Operator == b.Operator && jurisdictionsExclusive(a, b):
		return e.build(model.ConflictJurisdictional, a, b,
			fmt.Sprintf("the same rule on %q is claimed under mutually exclusive jurisdictions %s and %s",
				actionLabel(a, b), a.Jurisdiction, b.Jurisdiction)), true
	}

	// CONDITIONAL_CONFLICT and HIERARCHICAL are reserved classifications;
	// no pairwise rule produces them yet.
	return model.Conflict{}, false
}

func (e *Engine) build(kind model.ConflictType, a, b Subject, description string) model.Conflict {
	confidence := confidenceProduct(a, b)
	return model.Conflict{
		Type:        kind,
		Severity:    severityFor(confidence),
		A:           a.side(),
		B:           b.side(),
		Description: description,
		Confidence:  confidence,
	}
}

// confidenceProduct multiplies the side confidences and, for theorem
// sides, the precedent strength
func confidenceProduct(a, b Subject) float64 {
	p := a.Confidence * b.Confidence
	if a.TheoremID != "" {
		p *= a.PrecedentStrength
	}
	if b.TheoremID != "" {
		p *= b.PrecedentStrength
	}
	return p
}

func severityFor(confidence float64) model.Severity {
	switch {
	case confidence >= 0.8:
		return model.SeverityHigh
	case confidence >= 0.5:
		return model.SeverityMedium
	}
	return model.SeverityLow
}

func scopesDisjoint(a, b Subject) bool {
	if a.Scope == nil || b.Scope == nil {
		return false
	}
	return !a.Scope.Overlaps(*b.Scope)
}

func jurisdictionsExclusive(a, b Subject) bool {
	return a.Jurisdiction != "" && b.Jurisdiction != "" && a.Jurisdiction != b.Jurisdiction
}

func entityLabel(a, b Subject) string {
	if a.Entity != "" {
		return a.Entity
	}
	if b.Entity != "" {
		return b.Entity
	}
	return "the affected party"
}

func actionLabel(a, b Subject) string {
	if a.Action != "" {
		return a.Action
	}
	return b.Action
}

// Query filters the conflict database. Absent fields match everything
// and present filters are conjunctive.
type Query struct {
	// Entity matches case-insensitively as a substring of either side's
	// entity.
	Entity string
	// Type restricts to one exact conflict type.
	Type *model.ConflictType
	// MinSeverity keeps conflicts at or above the given severity.
	// Unrecognized strings rank as low and therefore match everything.
	MinSeverity model.Severity
}

// QueryConflicts returns every recorded conflict passing all filters, in
// detection order
func (e *Engine) QueryConflicts(q Query) []model.Conflict {
	e.mu.Lock()
	recorded := make([]model.Conflict, len(e.conflicts))
	copy(recorded, e.conflicts)
	e.mu.Unlock()

	entity := strings.ToLower(q.Entity)
	minRank := q.MinSeverity.Rank()

	matches := make([]model.Conflict, 0, len(recorded))
	for _, c := range recorded {
		if entity != "" &&
			!strings.Contains(strings.ToLower(c.A.Entity), entity) &&
			!strings.Contains(strings.ToLower(c.B.Entity), entity) {
			continue
		}
		if q.Type != nil && c.Type != *q.Type {
			continue
		}
		if c.Severity.Rank() < minRank {
			continue
		}
		matches = append(matches, c)
	}
	return matches
}

// Len returns the number of recorded conflicts
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.conflicts)
}
