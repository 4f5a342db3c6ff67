package model

import "time"

// Modality classifies a statement extracted from legal text. It extends the
// deontic operators with the two structural extraction categories.
type Modality string

const (
	ModalityObligation  Modality = "OBLIGATION"
	ModalityPermission  Modality = "PERMISSION"
	ModalityProhibition Modality = "PROHIBITION"
	ModalityConditional Modality = "CONDITIONAL"
	ModalityException   Modality = "EXCEPTION"
)

// Operator maps a modality to its deontic operator. Conditional and
// exception statements carry the operator of their embedded clause, so the
// second return is false for them.
func (m Modality) Operator() (DeonticOperator, bool) {
	switch m {
	case ModalityObligation:
		return Obligation, true
	case ModalityPermission:
		return Permission, true
	case ModalityProhibition:
		return Prohibition, true
	}
	return "", false
}

// StatementContext records where a statement was found
type StatementContext struct {
	SurroundingText string    `json:"surrounding_text"` // the sentence the statement came from
	Position        int       `json:"position"`         // character offset in the document
	ExtractedAt     time.Time `json:"extracted_at"`
}

// DeonticStatement is the extractor output: a typed deontic assertion with
// provenance. Statements are created once and read-only thereafter.
type DeonticStatement struct {
	ID             string           `json:"id"` // stmt_N, cond_stmt_N, exc_stmt_N
	Entity         string           `json:"entity"`
	Action         string           `json:"action"`
	Modality       Modality         `json:"modality"`
	SourceDocument string           `json:"source_document"`
	SourceText     string           `json:"source_text"`
	Confidence     float64          `json:"confidence"`
	Context        StatementContext `json:"context"`
	Conditions     []string         `json:"conditions,omitempty"` // CONDITIONAL only
	Exceptions     []string         `json:"exceptions,omitempty"` // EXCEPTION only
}

// Formula converts the statement to a deontic formula for retrieval and
// conflict checks. Conditional and exception statements map to OBLIGATION
// since they constrain behavior without a standalone deontic operator.
func (s DeonticStatement) Formula() DeonticFormula {
	op, ok := s.Modality.Operator()
	if !ok {
		op = Obligation
	}
	agent := &LegalAgent{ID: s.Entity, Name: s.Entity, Kind: AgentRole}
	return NewDeonticFormula(op, s.Action, agent, s.Confidence, s.SourceText)
}
