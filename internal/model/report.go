package model

import "time"

// ConsistencyAnalysis is the result of checking one document against the
// theorem corpus. It is created per check and never persisted by the core.
type ConsistencyAnalysis struct {
	DocumentID      string             `json:"document_id"`
	CheckedAt       time.Time          `json:"checked_at"`
	TemporalContext time.Time          `json:"temporal_context"`
	Jurisdiction    string             `json:"jurisdiction"`
	LegalDomain     string             `json:"legal_domain"`
	Statements      []DeonticStatement `json:"statements"`
	Result          ConsistencyResult  `json:"result"`
}

// ConsistencyResult aggregates the conflict findings
type ConsistencyResult struct {
	IsConsistent      bool       `json:"is_consistent"`
	Conflicts         []Conflict `json:"conflicts"`
	TemporalConflicts []Conflict `json:"temporal_conflicts"`
	RelevantTheorems  []Theorem  `json:"relevant_theorems"`
	ConfidenceScore   float64    `json:"confidence_score"`
}

// IssueCategory classifies a debug report issue
type IssueCategory string

const (
	CategoryCriticalError IssueCategory = "critical_error"
	CategoryWarning       IssueCategory = "warning"
	CategorySuggestion    IssueCategory = "suggestion"
)

// Issue is one human-readable finding in a debug report
type Issue struct {
	Severity   Severity      `json:"severity"`
	Category   IssueCategory `json:"category"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// DebugReport is the severity-ranked explanation of all conflicts found in
// a document check
type DebugReport struct {
	DocumentID     string   `json:"document_id"`
	TotalIssues    int      `json:"total_issues"`
	CriticalErrors int      `json:"critical_errors"`
	Warnings       int      `json:"warnings"`
	Suggestions    int      `json:"suggestions"`
	Issues         []Issue  `json:"issues"`
	Summary        string   `json:"summary"`
	FixSuggestions []string `json:"fix_suggestions"`
}
