package model

// ConflictType classifies a detected logical incompatibility
type ConflictType string

const (
	ConflictObligationProhibition ConflictType = "OBLIGATION_PROHIBITION"
	ConflictPermissionProhibition ConflictType = "PERMISSION_PROHIBITION"
	ConflictConditional           ConflictType = "CONDITIONAL_CONFLICT"
	ConflictTemporal              ConflictType = "TEMPORAL"
	ConflictJurisdictional        ConflictType = "JURISDICTIONAL"
	ConflictHierarchical          ConflictType = "HIERARCHICAL"
)

// Severity ranks conflicts low < medium < high
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank returns the ordering position of a severity. Unrecognized severity
// strings rank as low, so they match everything in min-severity filters.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// ConflictSide is one of the two statements participating in a conflict.
// TheoremID is set when the side is a stored precedent rather than a
// document statement.
type ConflictSide struct {
	StatementID string          `json:"statement_id,omitempty"`
	TheoremID   string          `json:"theorem_id,omitempty"`
	Entity      string          `json:"entity"`
	Action      string          `json:"action"`
	Operator    DeonticOperator `json:"operator"`
	SourceText  string          `json:"source_text,omitempty"`
}

// Conflict records a detected incompatibility between two deontic
// statements or between a statement and a theorem
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    Severity     `json:"severity"`
	A           ConflictSide `json:"a"`
	B           ConflictSide `json:"b"`
	Description string       `json:"description"`
	Confidence  float64      `json:"confidence"` // product of side confidences (and precedent strength)
}
