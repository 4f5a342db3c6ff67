package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DeonticOperator classifies what an agent must, may, or must not do
type DeonticOperator string

const (
	Obligation  DeonticOperator = "OBLIGATION"
	Permission  DeonticOperator = "PERMISSION"
	Prohibition DeonticOperator = "PROHIBITION"
)

// Valid reports whether the operator is one of the three deontic operators
func (op DeonticOperator) Valid() bool {
	switch op {
	case Obligation, Permission, Prohibition:
		return true
	}
	return false
}

// TemporalOperator classifies when a formula holds over time
type TemporalOperator string

const (
	Always     TemporalOperator = "ALWAYS"
	Eventually TemporalOperator = "EVENTUALLY"
	Next       TemporalOperator = "NEXT"
	Until      TemporalOperator = "UNTIL"
)

// AgentKind classifies a legal agent
type AgentKind string

const (
	AgentPerson       AgentKind = "person"
	AgentOrganization AgentKind = "organization"
	AgentRole         AgentKind = "role"
)

// LegalAgent identifies a party bound by a deontic formula.
// Agents are compared by ID only.
type LegalAgent struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind AgentKind `json:"kind"`
}

// Equal reports whether two agents denote the same party
func (a LegalAgent) Equal(b LegalAgent) bool {
	return a.ID == b.ID
}

// DeonticFormula is an immutable deontic assertion over a normalized action
type DeonticFormula struct {
	Operator    DeonticOperator `json:"operator"`
	Proposition string          `json:"proposition"`           // normalized lowercase action text
	Agent       *LegalAgent     `json:"agent,omitempty"`       // nil when the agent is unspecified
	Confidence  float64         `json:"confidence"`            // [0,1]
	SourceText  string          `json:"source_text,omitempty"` // verbatim text the formula came from
}

// NewDeonticFormula builds a formula with a normalized proposition
func NewDeonticFormula(op DeonticOperator, proposition string, agent *LegalAgent, confidence float64, sourceText string) DeonticFormula {
	return DeonticFormula{
		Operator:    op,
		Proposition: NormalizeProposition(proposition),
		Agent:       agent,
		Confidence:  clamp01(confidence),
		SourceText:  sourceText,
	}
}

// NormalizeProposition lowercases and collapses whitespace in action text
func NormalizeProposition(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// PotentialConflict reports whether two formulas are conflict candidates:
// propositions match (exact or normalized substring) and agents match or
// either is unspecified.
func (f DeonticFormula) PotentialConflict(g DeonticFormula) bool {
	if !propositionsMatch(f.Proposition, g.Proposition) {
		return false
	}
	if f.Agent == nil || g.Agent == nil {
		return true
	}
	return f.Agent.Equal(*g.Agent)
}

func propositionsMatch(a, b string) bool {
	a, b = NormalizeProposition(a), NormalizeProposition(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// String renders the formula in operator(proposition) form
func (f DeonticFormula) String() string {
	if f.Agent != nil {
		return fmt.Sprintf("%s(%s, %s)", f.Operator, f.Agent.ID, f.Proposition)
	}
	return fmt.Sprintf("%s(%s)", f.Operator, f.Proposition)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Formula is the polymorphic theorem formula variant: either a DeonticFormula
// or a TemporalFormula wrapping another formula. Bridges to other proof
// formalisms only need to read and write this variant.
type Formula interface {
	// Kind returns the variant tag ("deontic" or "temporal")
	Kind() string
	// Text returns the formula rendered as a string, nesting preserved
	Text() string
	// Deontic returns the innermost deontic formula
	Deontic() DeonticFormula
}

const (
	KindDeontic  = "deontic"
	KindTemporal = "temporal"
)

func (f DeonticFormula) Kind() string            { return KindDeontic }
func (f DeonticFormula) Text() string            { return f.String() }
func (f DeonticFormula) Deontic() DeonticFormula { return f }

// TemporalFormula wraps a sub-formula with a temporal operator.
// Nesting is allowed and preserved verbatim in string form.
type TemporalFormula struct {
	Operator TemporalOperator `json:"operator"`
	Sub      Formula          `json:"formula"`
}

func (f TemporalFormula) Kind() string { return KindTemporal }

func (f TemporalFormula) Text() string {
	return fmt.Sprintf("%s(%s)", f.Operator, f.Sub.Text())
}

func (f TemporalFormula) Deontic() DeonticFormula {
	return f.Sub.Deontic()
}

// formulaEnvelope is the tagged wire form of the Formula variant
type formulaEnvelope struct {
	Type     string           `json:"type"`
	Deontic  *DeonticFormula  `json:"deontic,omitempty"`
	Operator TemporalOperator `json:"operator,omitempty"`
	Sub      json.RawMessage  `json:"formula,omitempty"`
}

// MarshalFormula serializes a Formula variant with its type tag
func MarshalFormula(f Formula) ([]byte, error) {
	switch v := f.(type) {
	case DeonticFormula:
		return json.Marshal(formulaEnvelope{Type: KindDeontic, Deontic: &v})
	case TemporalFormula:
		sub, err := MarshalFormula(v.Sub)
		if err != nil {
			return nil, err
		}
		return json.Marshal(formulaEnvelope{Type: KindTemporal, Operator: v.Operator, Sub: sub})
	default:
		return nil, fmt.Errorf("unknown formula kind: %T", f)
	}
}

// UnmarshalFormula deserializes a tagged Formula variant
func UnmarshalFormula(data []byte) (Formula, error) {
	var env formulaEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case KindDeontic:
		if env.Deontic == nil {
			return nil, fmt.Errorf("deontic formula envelope missing body")
		}
		return *env.Deontic, nil
	case KindTemporal:
		sub, err := UnmarshalFormula(env.Sub)
		if err != nil {
			return nil, err
		}
		return TemporalFormula{Operator: env.Operator, Sub: sub}, nil
	default:
		return nil, fmt.Errorf("unknown formula type tag: %q", env.Type)
	}
}

// TemporalScope is a validity window. A nil End means unbounded.
type TemporalScope struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end"` // null = unbounded
}

// UnboundedScope returns a scope valid from start with no end
func UnboundedScope(start time.Time) TemporalScope {
	return TemporalScope{Start: start}
}

// BoundedScope returns a scope valid between start and end inclusive
func BoundedScope(start, end time.Time) TemporalScope {
	return TemporalScope{Start: start, End: &end}
}

// ActiveAt reports whether the scope covers time t:
// start <= t and (end unbounded or t <= end)
func (s TemporalScope) ActiveAt(t time.Time) bool {
	if t.Before(s.Start) {
		return false
	}
	return s.End == nil || !t.After(*s.End)
}

// Overlaps reports whether two scopes share any instant:
// max(start1, start2) <= min(end1 or +inf, end2 or +inf)
func (s TemporalScope) Overlaps(o TemporalScope) bool {
	latestStart := s.Start
	if o.Start.After(latestStart) {
		latestStart = o.Start
	}
	if s.End != nil && s.End.Before(latestStart) {
		return false
	}
	if o.End != nil && o.End.Before(latestStart) {
		return false
	}
	return true
}

// scopeWire pins the serialized form to ISO-8601 timestamps
type scopeWire struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

// MarshalJSON serializes the scope with RFC 3339 timestamps and end=null
// for unbounded scopes
func (s TemporalScope) MarshalJSON() ([]byte, error) {
	w := scopeWire{Start: s.Start.UTC().Format(time.RFC3339)}
	if s.End != nil {
		end := s.End.UTC().Format(time.RFC3339)
		w.End = &end
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the RFC 3339 wire form
func (s *TemporalScope) UnmarshalJSON(data []byte) error {
	var w scopeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, w.Start)
	if err != nil {
		return fmt.Errorf("parse scope start: %w", err)
	}
	s.Start = start
	s.End = nil
	if w.End != nil {
		end, err := time.Parse(time.RFC3339, *w.End)
		if err != nil {
			return fmt.Errorf("parse scope end: %w", err)
		}
		s.End = &end
	}
	return nil
}
