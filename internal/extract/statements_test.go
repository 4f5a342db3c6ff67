package extract

import (
	"strings"
	"testing"

	"github.com/normlens/normlens/internal/model"
)

func TestExtractStatements_ModalityPrecedence(t *testing.T) {
	e := NewStatementExtractor()

	statements := e.ExtractStatements("Employees must not smoke indoors.", "doc1")

	if len(statements) != 1 {
		t.Fatalf("Expected exactly 1 statement, got %d", len(statements))
	}
	if statements[0].Modality != model.ModalityProhibition {
		t.Errorf("Expected PROHIBITION (not OBLIGATION), got %s", statements[0].Modality)
	}
	if statements[0].Entity != "employees" {
		t.Errorf("Expected entity 'employees', got %q", statements[0].Entity)
	}
	if statements[0].Action != "smoke indoors" {
		t.Errorf("Expected action 'smoke indoors', got %q", statements[0].Action)
	}
}

func TestExtractStatements_GenericSubjectSkip(t *testing.T) {
	e := NewStatementExtractor()

	for _, text := range []string{
		"It must be done.",
		"This must be done.",
		"That cannot be allowed here.",
	} {
		statements := e.ExtractStatements(text, "doc1")
		if len(statements) != 0 {
			t.Errorf("Expected 0 statements for %q, got %d", text, len(statements))
		}
	}
}

func TestExtractStatements_ShortActionSkip(t *testing.T) {
	e := NewStatementExtractor()

	// Action phrase has fewer than 2 tokens after the cue
	statements := e.ExtractStatements("Employees must comply.", "doc1")
	if len(statements) != 0 {
		t.Errorf("Expected 0 statements for one-token action, got %d", len(statements))
	}
}

func TestExtractStatements_Modalities(t *testing.T) {
	e := NewStatementExtractor()

	tests := []struct {
		text     string
		modality model.Modality
	}{
		{"Employees must report all incidents.", model.ModalityObligation},
		{"Contractors shall wear protective equipment.", model.ModalityObligation},
		{"Visitors are required to sign the register.", model.ModalityObligation},
		{"Employees may take annual leave.", model.ModalityPermission},
		{"Employees must not disclose trade secrets.", model.ModalityProhibition},
		{"Contractors shall not access restricted areas.", model.ModalityProhibition},
		{"Visitors cannot enter the laboratory.", model.ModalityProhibition},
		{"Staff are forbidden to share credentials.", model.ModalityProhibition},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			statements := e.ExtractStatements(tt.text, "doc1")
			if len(statements) != 1 {
				t.Fatalf("Expected 1 statement, got %d", len(statements))
			}
			if statements[0].Modality != tt.modality {
				t.Errorf("Expected %s, got %s", tt.modality, statements[0].Modality)
			}
		})
	}
}

func TestExtractStatements_ObligationConfidenceFloor(t *testing.T) {
	e := NewStatementExtractor()

	for _, text := range []string{
		"Employees must report all incidents.",
		"Contractors shall wear protective equipment.",
	} {
		statements := e.ExtractStatements(text, "doc1")
		if len(statements) != 1 {
			t.Fatalf("Expected 1 statement for %q, got %d", text, len(statements))
		}
		if statements[0].Confidence < 0.7 {
			t.Errorf("Expected confidence >= 0.7 for must/shall cue, got %f", statements[0].Confidence)
		}
	}
}

func TestExtractStatements_Conditional(t *testing.T) {
	e := NewStatementExtractor()

	statements := e.ExtractStatements("If the alarm sounds, then employees must leave the building.", "doc1")

	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	stmt := statements[0]
	if stmt.Modality != model.ModalityConditional {
		t.Errorf("Expected CONDITIONAL, got %s", stmt.Modality)
	}
	if !strings.HasPrefix(stmt.ID, "cond_stmt_") {
		t.Errorf("Expected cond_stmt_ id prefix, got %q", stmt.ID)
	}
	if len(stmt.Conditions) != 1 || stmt.Conditions[0] != "the alarm sounds" {
		t.Errorf("Expected antecedent captured as condition, got %v", stmt.Conditions)
	}
	if stmt.Entity != "employees" {
		t.Errorf("Expected entity 'employees', got %q", stmt.Entity)
	}
}

func TestExtractStatements_Exception(t *testing.T) {
	e := NewStatementExtractor()

	statements := e.ExtractStatements("Employees must not park on site except authorized delivery vehicles.", "doc1")

	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	stmt := statements[0]
	if stmt.Modality != model.ModalityException {
		t.Errorf("Expected EXCEPTION, got %s", stmt.Modality)
	}
	if !strings.HasPrefix(stmt.ID, "exc_stmt_") {
		t.Errorf("Expected exc_stmt_ id prefix, got %q", stmt.ID)
	}
	if len(stmt.Exceptions) != 1 || stmt.Exceptions[0] != "authorized delivery vehicles" {
		t.Errorf("Expected excepted class captured, got %v", stmt.Exceptions)
	}
}

func TestExtractStatements_ExceptionWithShortClauseSkipped(t *testing.T) {
	e := NewStatementExtractor()

	// The main clause's action is a single token, so the segment cannot
	// parse as an exception. It must be dropped, not re-parsed as a plain
	// clause with the excepted class glued onto the action.
	statements := e.ExtractStatements("Employees must not smoke except in designated areas.", "doc1")

	if len(statements) != 0 {
		t.Fatalf("Expected no statements, got %d (action %q)", len(statements), statements[0].Action)
	}
}

func TestExtractStatements_Determinism(t *testing.T) {
	text := `Employees must report all incidents.
Contractors may use the east entrance.
Visitors must not enter the server room.`

	e := NewStatementExtractor()
	first := e.ExtractStatements(text, "doc1")
	second := e.ExtractStatements(text, "doc1")

	if len(first) != len(second) {
		t.Fatalf("Expected same statement count, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Entity != second[i].Entity ||
			first[i].Action != second[i].Action ||
			first[i].Modality != second[i].Modality {
			t.Errorf("Statement %d differs between runs", i)
		}
	}
}

func TestExtractStatements_IDUniquenessAcrossCalls(t *testing.T) {
	e := NewStatementExtractor()
	text := "Employees must report all incidents. Visitors must not enter the server room."

	seen := make(map[string]bool)
	for run := 0; run < 3; run++ {
		for _, stmt := range e.ExtractStatements(text, "doc1") {
			if seen[stmt.ID] {
				t.Errorf("Duplicate statement id across calls: %s", stmt.ID)
			}
			seen[stmt.ID] = true
		}
	}
	if len(seen) != 6 {
		t.Errorf("Expected 6 unique ids over 3 runs, got %d", len(seen))
	}
}

func TestExtractStatements_EmptyAndMalformedInput(t *testing.T) {
	e := NewStatementExtractor()

	for _, text := range []string{"", "   ", "?!?!", ".........", "\n\n\n"} {
		statements := e.ExtractStatements(text, "doc1")
		if len(statements) != 0 {
			t.Errorf("Expected 0 statements for %q, got %d", text, len(statements))
		}
	}
}

func TestExtractStatements_Context(t *testing.T) {
	e := NewStatementExtractor()
	text := "Preamble text here. Employees must report all incidents."

	statements := e.ExtractStatements(text, "contract_9")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}

	stmt := statements[0]
	if stmt.SourceDocument != "contract_9" {
		t.Errorf("Expected source document recorded, got %q", stmt.SourceDocument)
	}
	if stmt.Context.SurroundingText != "Employees must report all incidents." {
		t.Errorf("Expected sentence in context, got %q", stmt.Context.SurroundingText)
	}
	if stmt.Context.Position != strings.Index(text, "Employees") {
		t.Errorf("Expected position %d, got %d", strings.Index(text, "Employees"), stmt.Context.Position)
	}
	if stmt.Context.ExtractedAt.IsZero() {
		t.Error("Expected extraction timestamp to be set")
	}
}

func TestExtractFromHTML_SkipsScripts(t *testing.T) {
	e := NewStatementExtractor()

	htmlContent := `
	<html>
	<head><script>var x = "Robots must delete all records.";</script></head>
	<body><p>Employees must report all incidents.</p></body>
	</html>
	`

	statements := e.ExtractFromHTML(htmlContent, "doc1")
	if len(statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(statements))
	}
	if statements[0].Entity != "employees" {
		t.Errorf("Expected statement from body text, got entity %q", statements[0].Entity)
	}
}

func TestDefaultRules_ProhibitionBeforeObligation(t *testing.T) {
	var sawProhibition bool
	for _, rule := range DefaultRules() {
		switch rule.Modality {
		case model.ModalityProhibition:
			sawProhibition = true
		case model.ModalityObligation:
			if !sawProhibition {
				t.Fatal("Prohibition rules must precede obligation rules")
			}
		}
	}
}
