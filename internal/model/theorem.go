package model

import (
	"encoding/json"
	"fmt"
)

// Theorem is a stored precedent: a formula with jurisdiction, domain, and
// temporal validity metadata. Theorems are immutable once stored; newer
// rulings supersede by insertion, never by mutation.
type Theorem struct {
	TheoremID         string        `json:"theorem_id"`
	Formula           Formula       `json:"-"`
	Embedding         []float32     `json:"embedding,omitempty"`
	TemporalScope     TemporalScope `json:"temporal_scope"`
	Jurisdiction      string        `json:"jurisdiction"`
	LegalDomain       string        `json:"legal_domain"`
	SourceCase        string        `json:"source_case"`
	PrecedentStrength float64       `json:"precedent_strength"` // [0,1]
	Confidence        float64       `json:"confidence"`         // [0,1]
}

// theoremWire carries the polymorphic formula as a tagged JSON object
type theoremWire struct {
	TheoremID         string          `json:"theorem_id"`
	Formula           json.RawMessage `json:"formula"`
	Embedding         []float32       `json:"embedding,omitempty"`
	TemporalScope     TemporalScope   `json:"temporal_scope"`
	Jurisdiction      string          `json:"jurisdiction"`
	LegalDomain       string          `json:"legal_domain"`
	SourceCase        string          `json:"source_case"`
	PrecedentStrength float64         `json:"precedent_strength"`
	Confidence        float64         `json:"confidence"`
}

// MarshalJSON serializes the theorem with its formula variant tagged by type
func (t Theorem) MarshalJSON() ([]byte, error) {
	if t.Formula == nil {
		return nil, fmt.Errorf("theorem %s has no formula", t.TheoremID)
	}
	formula, err := MarshalFormula(t.Formula)
	if err != nil {
		return nil, err
	}
	return json.Marshal(theoremWire{
		TheoremID:         t.TheoremID,
		Formula:           formula,
		Embedding:         t.Embedding,
		TemporalScope:     t.TemporalScope,
		Jurisdiction:      t.Jurisdiction,
		LegalDomain:       t.LegalDomain,
		SourceCase:        t.SourceCase,
		PrecedentStrength: t.PrecedentStrength,
		Confidence:        t.Confidence,
	})
}

// UnmarshalJSON parses the tagged wire form back into a Theorem
func (t *Theorem) UnmarshalJSON(data []byte) error {
	var w theoremWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	formula, err := UnmarshalFormula(w.Formula)
	if err != nil {
		return fmt.Errorf("theorem %s: %w", w.TheoremID, err)
	}
	*t = Theorem{
		TheoremID:         w.TheoremID,
		Formula:           formula,
		Embedding:         w.Embedding,
		TemporalScope:     w.TemporalScope,
		Jurisdiction:      w.Jurisdiction,
		LegalDomain:       w.LegalDomain,
		SourceCase:        w.SourceCase,
		PrecedentStrength: w.PrecedentStrength,
		Confidence:        w.Confidence,
	}
	return nil
}

// ScoredTheorem pairs a theorem with its query score breakdown
type ScoredTheorem struct {
	Theorem    Theorem `json:"theorem"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// StoreStatistics summarizes the indexed corpus
type StoreStatistics struct {
	TotalTheorems        int            `json:"total_theorems"`
	Jurisdictions        map[string]int `json:"jurisdictions"`
	LegalDomains         map[string]int `json:"legal_domains"`
	AvgPrecedentStrength float64        `json:"avg_precedent_strength"`
}
