package conflict

import (
	"testing"
	"time"

	"github.com/normlens/normlens/internal/model"
)

func subject(entity, action string, op model.DeonticOperator, confidence float64) Subject {
	return Subject{
		StatementID: "stmt_1",
		Entity:      entity,
		Action:      action,
		Operator:    op,
		Confidence:  confidence,
		SourceText:  entity + " " + action,
	}
}

func theoremSubject(entity, action string, op model.DeonticOperator, confidence, strength float64) Subject {
	s := subject(entity, action, op, confidence)
	s.StatementID = ""
	s.TheoremID = "thm_1"
	s.PrecedentStrength = strength
	return s
}

func scoped(s Subject, scope model.TemporalScope) Subject {
	s.Scope = &scope
	return s
}

func TestFindConflicts_ObligationProhibition(t *testing.T) {
	e := NewEngine()

	a := subject("employee", "disclose financial interests", model.Obligation, 0.95)
	b := subject("employee", "disclose financial interests", model.Prohibition, 0.95)

	c, found := e.FindConflicts(a, b)
	if !found {
		t.Fatal("Expected a conflict")
	}
	if c.Type != model.ConflictObligationProhibition {
		t.Errorf("Expected OBLIGATION_PROHIBITION, got %s", c.Type)
	}
	if c.Severity != model.SeverityHigh {
		t.Errorf("Expected high severity at confidence %.4f, got %s", c.Confidence, c.Severity)
	}
	if c.A.Operator != model.Obligation || c.B.Operator != model.Prohibition {
		t.Error("Expected the prohibition oriented as side B")
	}
}

func TestFindConflicts_Symmetric(t *testing.T) {
	a := subject("contractor", "subcontract the work", model.Permission, 0.8)
	b := subject("contractor", "subcontract the work", model.Prohibition, 0.8)

	forward, foundForward := NewEngine().FindConflicts(a, b)
	reverse, foundReverse := NewEngine().FindConflicts(b, a)

	if !foundForward || !foundReverse {
		t.Fatal("Expected the conflict in both argument orders")
	}
	if forward.Type != reverse.Type {
		t.Errorf("Type differs by argument order: %s vs %s", forward.Type, reverse.Type)
	}
	if forward.Severity != reverse.Severity {
		t.Errorf("Severity differs by argument order: %s vs %s", forward.Severity, reverse.Severity)
	}
	if forward.Description != reverse.Description {
		t.Errorf("Description differs by argument order: %q vs %q", forward.Description, reverse.Description)
	}
}

func TestFindConflicts_PermissionProhibitionAgainstTheorem(t *testing.T) {
	e := NewEngine()

	stmt := subject("employee", "disclose confidential information", model.Permission, 0.9)
	thm := theoremSubject("employee", "disclose confidential information", model.Prohibition, 1.0, 0.9)

	c, found := e.FindConflicts(stmt, thm)
	if !found {
		t.Fatal("Expected a conflict between the permission and the stored prohibition")
	}
	if c.Type != model.ConflictPermissionProhibition {
		t.Errorf("Expected PERMISSION_PROHIBITION, got %s", c.Type)
	}
	if want := 0.9 * 1.0 * 0.9; c.Confidence != want {
		t.Errorf("Expected precedent strength in the confidence product: got %f, want %f", c.Confidence, want)
	}
	if c.B.TheoremID == "" {
		t.Error("Expected the theorem side to carry its id")
	}
}

func TestFindConflicts_SubstringPropositionsMatch(t *testing.T) {
	e := NewEngine()

	a := subject("employee", "disclose confidential information", model.Permission, 0.9)
	b := subject("employee", "under any circumstances disclose confidential information", model.Prohibition, 0.9)

	if _, found := e.FindConflicts(a, b); !found {
		t.Error("Expected substring propositions to be conflict candidates")
	}
}

func TestFindConflicts_NoConflict(t *testing.T) {
	tests := []struct {
		name string
		a, b Subject
	}{
		{
			"different propositions",
			subject("employee", "file expense reports", model.Obligation, 0.9),
			subject("employee", "attend safety training", model.Prohibition, 0.9),
		},
		{
			"different agents",
			subject("employee", "carry identification", model.Obligation, 0.9),
			subject("visitor", "carry identification", model.Prohibition, 0.9),
		},
		{
			"same operator without scopes",
			subject("employee", "wear protective equipment", model.Obligation, 0.9),
			subject("employee", "wear protective equipment", model.Obligation, 0.9),
		},
		{
			"obligation and permission",
			subject("employee", "take annual leave", model.Obligation, 0.9),
			subject("employee", "take annual leave", model.Permission, 0.9),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			if _, found := e.FindConflicts(tt.a, tt.b); found {
				t.Error("Expected no conflict")
			}
			if e.Len() != 0 {
				t.Error("Expected nothing recorded")
			}
		})
	}
}

func TestFindConflicts_Temporal(t *testing.T) {
	e := NewEngine()

	early := model.BoundedScope(
		time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	late := model.UnboundedScope(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	a := scoped(theoremSubject("bank", "report large transactions", model.Obligation, 1.0, 1.0), early)
	b := scoped(theoremSubject("bank", "report large transactions", model.Obligation, 1.0, 1.0), late)

	c, found := e.FindConflicts(a, b)
	if !found {
		t.Fatal("Expected a temporal conflict for disjoint validity windows")
	}
	if c.Type != model.ConflictTemporal {
		t.Errorf("Expected TEMPORAL, got %s", c.Type)
	}
}

func TestFindConflicts_DeonticMismatchWinsOverTemporal(t *testing.T) {
	e := NewEngine()

	early := model.BoundedScope(
		time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	late := model.UnboundedScope(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	a := scoped(theoremSubject("bank", "report large transactions", model.Obligation, 1.0, 1.0), early)
	b := scoped(theoremSubject("bank", "report large transactions", model.Prohibition, 1.0, 1.0), late)

	c, found := e.FindConflicts(a, b)
	if !found {
		t.Fatal("Expected a conflict")
	}
	if c.Type != model.ConflictObligationProhibition {
		t.Errorf("Expected the deontic rule to fire before the temporal rule, got %s", c.Type)
	}
}

func TestFindConflicts_Jurisdictional(t *testing.T) {
	e := NewEngine()

	a := theoremSubject("broker", "register with the regulator", model.Obligation, 1.0, 1.0)
	a.Jurisdiction = "Federal"
	b := theoremSubject("broker", "register with the regulator", model.Obligation, 1.0, 1.0)
	b.Jurisdiction = "California"

	c, found := e.FindConflicts(a, b)
	if !found {
		t.Fatal("Expected a jurisdictional conflict")
	}
	if c.Type != model.ConflictJurisdictional {
		t.Errorf("Expected JURISDICTIONAL, got %s", c.Type)
	}
}

func TestSeverityThresholds(t *testing.T) {
	tests := []struct {
		confidenceA float64
		confidenceB float64
		want        model.Severity
	}{
		{1.0, 0.85, model.SeverityHigh},
		{0.9, 0.9, model.SeverityHigh},
		{0.9, 0.6, model.SeverityMedium},
		{0.5, 0.5, model.SeverityLow},
	}

	for _, tt := range tests {
		a := subject("employee", "share client records", model.Obligation, tt.confidenceA)
		b := subject("employee", "share client records", model.Prohibition, tt.confidenceB)

		c, found := NewEngine().FindConflicts(a, b)
		if !found {
			t.Fatal("Expected a conflict")
		}
		if c.Severity != tt.want {
			t.Errorf("Confidence %.2f x %.2f: expected %s, got %s", tt.confidenceA, tt.confidenceB, tt.want, c.Severity)
		}
	}
}

func seedEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine()

	pairs := []struct {
		a, b Subject
	}{
		{
			subject("Employee", "disclose salaries", model.Obligation, 0.95),
			subject("Employee", "disclose salaries", model.Prohibition, 0.95),
		},
		{
			subject("contractor", "access the server room", model.Permission, 0.7),
			subject("contractor", "access the server room", model.Prohibition, 0.7),
		},
	}
	for _, p := range pairs {
		if _, found := e.FindConflicts(p.a, p.b); !found {
			t.Fatal("Seed pair did not conflict")
		}
	}
	return e
}

func TestQueryConflicts_NoFiltersReturnsAll(t *testing.T) {
	e := seedEngine(t)
	if got := e.QueryConflicts(Query{}); len(got) != 2 {
		t.Errorf("Expected the full conflict set, got %d", len(got))
	}
}

func TestQueryConflicts_EntitySubstringCaseInsensitive(t *testing.T) {
	e := seedEngine(t)
	got := e.QueryConflicts(Query{Entity: "EMPLOY"})
	if len(got) != 1 {
		t.Fatalf("Expected 1 conflict for entity substring, got %d", len(got))
	}
	if got[0].A.Entity != "Employee" {
		t.Errorf("Expected the Employee conflict, got %s", got[0].A.Entity)
	}
}

func TestQueryConflicts_TypeFilter(t *testing.T) {
	e := seedEngine(t)
	kind := model.ConflictPermissionProhibition
	got := e.QueryConflicts(Query{Type: &kind})
	if len(got) != 1 || got[0].Type != kind {
		t.Errorf("Expected exactly the PERMISSION_PROHIBITION conflict, got %d", len(got))
	}
}

func TestQueryConflicts_MinSeverity(t *testing.T) {
	e := seedEngine(t)

	if got := e.QueryConflicts(Query{MinSeverity: model.SeverityHigh}); len(got) != 1 {
		t.Errorf("Expected 1 high-severity conflict, got %d", len(got))
	}
	if got := e.QueryConflicts(Query{MinSeverity: model.SeverityLow}); len(got) != 2 {
		t.Errorf("Expected min severity low to match everything, got %d", len(got))
	}
	if got := e.QueryConflicts(Query{MinSeverity: "catastrophic"}); len(got) != 2 {
		t.Errorf("Expected an unrecognized severity to match everything, got %d", len(got))
	}
}

func TestQueryConflicts_FiltersOnlyRemove(t *testing.T) {
	e := seedEngine(t)

	all := e.QueryConflicts(Query{})
	filtered := e.QueryConflicts(Query{Entity: "contractor", MinSeverity: model.SeverityLow})
	if len(filtered) > len(all) {
		t.Error("Expected filters to only remove conflicts")
	}
	for _, c := range filtered {
		if c.A.Entity != "contractor" && c.B.Entity != "contractor" {
			t.Error("Expected every filtered conflict to match the entity filter")
		}
	}
}
