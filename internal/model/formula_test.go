package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDeonticOperator_Valid(t *testing.T) {
	for _, op := range []DeonticOperator{Obligation, Permission, Prohibition} {
		if !op.Valid() {
			t.Errorf("Expected %s to be valid", op)
		}
	}
	if DeonticOperator("MAYBE").Valid() {
		t.Error("Expected unknown operator to be invalid")
	}
}

func TestNewDeonticFormula_Normalization(t *testing.T) {
	f := NewDeonticFormula(Obligation, "  Disclose   Confidential INFORMATION ", nil, 1.5, "src")

	if f.Proposition != "disclose confidential information" {
		t.Errorf("Expected normalized proposition, got %q", f.Proposition)
	}
	if f.Confidence != 1.0 {
		t.Errorf("Expected confidence clamped to 1.0, got %f", f.Confidence)
	}
}

func TestPotentialConflict_Candidates(t *testing.T) {
	employee := &LegalAgent{ID: "employee", Name: "Employee", Kind: AgentRole}
	contractor := &LegalAgent{ID: "contractor", Name: "Contractor", Kind: AgentRole}

	tests := []struct {
		name string
		a, b DeonticFormula
		want bool
	}{
		{
			name: "exact proposition, same agent",
			a:    NewDeonticFormula(Obligation, "report incidents", employee, 0.9, ""),
			b:    NewDeonticFormula(Prohibition, "report incidents", employee, 0.9, ""),
			want: true,
		},
		{
			name: "substring proposition match",
			a:    NewDeonticFormula(Permission, "disclose confidential information", employee, 0.9, ""),
			b:    NewDeonticFormula(Prohibition, "disclose confidential information to third parties", employee, 0.9, ""),
			want: true,
		},
		{
			name: "unspecified agent matches any",
			a:    NewDeonticFormula(Obligation, "report incidents", nil, 0.9, ""),
			b:    NewDeonticFormula(Prohibition, "report incidents", employee, 0.9, ""),
			want: true,
		},
		{
			name: "different agents do not match",
			a:    NewDeonticFormula(Obligation, "report incidents", employee, 0.9, ""),
			b:    NewDeonticFormula(Prohibition, "report incidents", contractor, 0.9, ""),
			want: false,
		},
		{
			name: "unrelated propositions do not match",
			a:    NewDeonticFormula(Obligation, "report incidents", employee, 0.9, ""),
			b:    NewDeonticFormula(Prohibition, "smoke indoors", employee, 0.9, ""),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.PotentialConflict(tt.b); got != tt.want {
				t.Errorf("PotentialConflict = %v, want %v", got, tt.want)
			}
			// Candidate matching is symmetric
			if got := tt.b.PotentialConflict(tt.a); got != tt.want {
				t.Errorf("PotentialConflict reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemporalScope_ActiveAt(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	bounded := BoundedScope(start, end)
	unbounded := UnboundedScope(start)

	if bounded.ActiveAt(start.Add(-time.Hour)) {
		t.Error("Scope should not be active before start")
	}
	if !bounded.ActiveAt(start) {
		t.Error("Scope should be active at start (inclusive)")
	}
	if !bounded.ActiveAt(end) {
		t.Error("Scope should be active at end (inclusive)")
	}
	if bounded.ActiveAt(end.Add(time.Hour)) {
		t.Error("Bounded scope should not be active after end")
	}
	if !unbounded.ActiveAt(end.AddDate(100, 0, 0)) {
		t.Error("Unbounded scope should be active far in the future")
	}
}

func TestTemporalScope_OverlapSymmetry(t *testing.T) {
	t0 := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	scopes := []TemporalScope{
		BoundedScope(t0, t1),
		BoundedScope(t1, t2),
		BoundedScope(t2, t3),
		BoundedScope(t0, t3),
		UnboundedScope(t0),
		UnboundedScope(t2),
	}

	for i, a := range scopes {
		for j, b := range scopes {
			if a.Overlaps(b) != b.Overlaps(a) {
				t.Errorf("Overlap not symmetric for scopes %d and %d", i, j)
			}
		}
	}

	if BoundedScope(t0, t1).Overlaps(BoundedScope(t2, t3)) {
		t.Error("Disjoint scopes should not overlap")
	}
	if !BoundedScope(t0, t1).Overlaps(BoundedScope(t1, t2)) {
		t.Error("Scopes sharing an endpoint should overlap")
	}
	// An unbounded end always overlaps any scope starting before now
	if !UnboundedScope(t0).Overlaps(BoundedScope(t1, t2)) {
		t.Error("Unbounded scope should overlap any later bounded scope")
	}
}

func TestTemporalScope_RoundTrip(t *testing.T) {
	start := time.Date(2020, 6, 15, 12, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		scope TemporalScope
	}{
		{"bounded", BoundedScope(start, end)},
		{"unbounded", UnboundedScope(start)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.scope)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			var got TemporalScope
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			if !got.Start.Equal(tt.scope.Start) {
				t.Errorf("Start mismatch: got %v, want %v", got.Start, tt.scope.Start)
			}
			if (got.End == nil) != (tt.scope.End == nil) {
				t.Fatalf("End boundedness mismatch")
			}
			if got.End != nil && !got.End.Equal(*tt.scope.End) {
				t.Errorf("End mismatch: got %v, want %v", got.End, tt.scope.End)
			}
		})
	}
}

func TestTemporalScope_UnboundedSerializesAsNull(t *testing.T) {
	data, err := json.Marshal(UnboundedScope(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"end":null`) {
		t.Errorf("Expected end=null in wire form, got %s", data)
	}
}

func TestFormulaVariant_RoundTrip(t *testing.T) {
	agent := &LegalAgent{ID: "court", Name: "Court", Kind: AgentOrganization}
	deontic := NewDeonticFormula(Prohibition, "disclose sealed records", agent, 0.85, "sealed records shall not be disclosed")

	nested := TemporalFormula{
		Operator: Always,
		Sub: TemporalFormula{
			Operator: Until,
			Sub:      deontic,
		},
	}

	data, err := MarshalFormula(nested)
	if err != nil {
		t.Fatalf("MarshalFormula failed: %v", err)
	}

	got, err := UnmarshalFormula(data)
	if err != nil {
		t.Fatalf("UnmarshalFormula failed: %v", err)
	}

	if got.Kind() != KindTemporal {
		t.Errorf("Expected temporal kind, got %s", got.Kind())
	}
	// Nesting is preserved verbatim in string form
	want := "ALWAYS(UNTIL(PROHIBITION(court, disclose sealed records)))"
	if got.Text() != want {
		t.Errorf("Text = %q, want %q", got.Text(), want)
	}
	if got.Deontic().Operator != Prohibition {
		t.Errorf("Expected innermost PROHIBITION, got %s", got.Deontic().Operator)
	}
}

func TestUnmarshalFormula_UnknownTag(t *testing.T) {
	if _, err := UnmarshalFormula([]byte(`{"type":"modal"}`)); err == nil {
		t.Error("Expected error for unknown formula type tag")
	}
}
