package api

import (
	"context"
	"testing"

	"github.com/normlens/normlens/internal/embed"
	"github.com/normlens/normlens/internal/model"
	"github.com/normlens/normlens/internal/pipeline"
	"github.com/normlens/normlens/internal/store"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	cfg := model.DefaultConfig()
	s := store.NewTheoremStore(embed.NewHashProvider(64), cfg.Store)
	return New(pipeline.NewPipeline(s, cfg), s, cfg)
}

func TestCheckDocumentConsistency_MissingText(t *testing.T) {
	a := newTestAPI(t)

	resp := a.CheckDocumentConsistency(context.Background(), CheckRequest{DocumentText: "   "})
	if resp.Success {
		t.Fatal("Expected failure")
	}
	if resp.ErrorCode != CodeMissingDocumentText {
		t.Errorf("Expected %s, got %s", CodeMissingDocumentText, resp.ErrorCode)
	}
	if resp.Analysis != nil {
		t.Error("Expected no partial processing")
	}
}

func TestCheckDocumentConsistency_Defaults(t *testing.T) {
	a := newTestAPI(t)

	resp := a.CheckDocumentConsistency(context.Background(), CheckRequest{
		DocumentText: "Employees must complete annual training.",
	})
	if !resp.Success {
		t.Fatalf("Expected success, got %s: %s", resp.ErrorCode, resp.Error)
	}
	if resp.Analysis.DocumentID == "" {
		t.Error("Expected a generated document id")
	}
	if resp.Analysis.Jurisdiction != "Federal" || resp.Analysis.LegalDomain != "general" {
		t.Errorf("Expected default jurisdiction/domain, got %s/%s",
			resp.Analysis.Jurisdiction, resp.Analysis.LegalDomain)
	}
	if resp.Report == nil {
		t.Error("Expected a debug report alongside the analysis")
	}
}

func TestCheckDocumentConsistency_BadTemporalContext(t *testing.T) {
	a := newTestAPI(t)

	resp := a.CheckDocumentConsistency(context.Background(), CheckRequest{
		DocumentText:    "Employees must complete annual training.",
		TemporalContext: "next tuesday",
	})
	if resp.Success || resp.ErrorCode != CodeProcessingError {
		t.Errorf("Expected %s for an unparseable temporal context, got %s", CodeProcessingError, resp.ErrorCode)
	}
}

func TestAddTheorem_Validation(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name string
		req  AddRequest
		code string
	}{
		{"missing proposition", AddRequest{Operator: "PROHIBITION"}, CodeMissingProposition},
		{"unknown operator", AddRequest{Operator: "SUGGESTION", Proposition: "file taxes", PrecedentStrength: 0.5}, CodeProcessingError},
		{"bad start date", AddRequest{Operator: "OBLIGATION", Proposition: "file taxes", PrecedentStrength: 0.5, StartDate: "whenever"}, CodeProcessingError},
		{"strength out of range", AddRequest{Operator: "OBLIGATION", Proposition: "file taxes", PrecedentStrength: 2.0}, CodeProcessingError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.AddTheorem(context.Background(), tt.req)
			if resp.Success {
				t.Fatal("Expected failure")
			}
			if resp.ErrorCode != tt.code {
				t.Errorf("Expected %s, got %s", tt.code, resp.ErrorCode)
			}
		})
	}
}

func TestAddTheoremThenQuery(t *testing.T) {
	a := newTestAPI(t)

	added := a.AddTheorem(context.Background(), AddRequest{
		Operator:          "prohibition",
		Proposition:       "disclose confidential information",
		AgentName:         "Employee",
		Jurisdiction:      "Federal",
		LegalDomain:       "employment",
		SourceCase:        "Doe v. Acme",
		PrecedentStrength: 0.9,
		StartDate:         "2000-01-01",
	})
	if !added.Success {
		t.Fatalf("AddTheorem failed: %s: %s", added.ErrorCode, added.Error)
	}
	if added.TheoremID == "" {
		t.Fatal("Expected a theorem id")
	}

	resp := a.QueryTheorems(context.Background(), QueryRequest{
		Query:          "disclose confidential information",
		OperatorFilter: "prohibition",
		Jurisdiction:   "all",
		LegalDomain:    "all",
	})
	if !resp.Success {
		t.Fatalf("QueryTheorems failed: %s: %s", resp.ErrorCode, resp.Error)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Theorem.TheoremID != added.TheoremID {
		t.Error("Expected the added theorem back")
	}

	stats := a.Statistics()
	if stats.TotalTheorems != 1 || stats.LegalDomains["employment"] != 1 {
		t.Errorf("Unexpected statistics: %+v", stats)
	}
}

func TestQueryTheorems_MissingQuery(t *testing.T) {
	a := newTestAPI(t)

	resp := a.QueryTheorems(context.Background(), QueryRequest{Query: ""})
	if resp.Success || resp.ErrorCode != CodeMissingQuery {
		t.Errorf("Expected %s, got %s", CodeMissingQuery, resp.ErrorCode)
	}
}

func TestQueryTheorems_UnknownOperatorFilter(t *testing.T) {
	a := newTestAPI(t)

	resp := a.QueryTheorems(context.Background(), QueryRequest{Query: "anything", OperatorFilter: "MANDATE"})
	if resp.Success || resp.ErrorCode != CodeQueryError {
		t.Errorf("Expected %s, got %s", CodeQueryError, resp.ErrorCode)
	}
}

func TestCheckDocumentConsistency_ConflictAgainstStoredTheorem(t *testing.T) {
	a := newTestAPI(t)

	added := a.AddTheorem(context.Background(), AddRequest{
		Operator:          "PROHIBITION",
		Proposition:       "disclose confidential information",
		AgentName:         "employee",
		PrecedentStrength: 0.9,
		StartDate:         "2000-01-01",
	})
	if !added.Success {
		t.Fatalf("AddTheorem failed: %s", added.Error)
	}

	resp := a.CheckDocumentConsistency(context.Background(), CheckRequest{
		DocumentText: "Employee may disclose confidential information.",
		DocumentID:   "handbook-7",
	})
	if !resp.Success {
		t.Fatalf("Check failed: %s: %s", resp.ErrorCode, resp.Error)
	}
	if resp.Analysis.Result.IsConsistent {
		t.Fatal("Expected the stored prohibition to conflict with the document")
	}
	if resp.Analysis.Result.Conflicts[0].Type != model.ConflictPermissionProhibition {
		t.Errorf("Expected PERMISSION_PROHIBITION, got %s", resp.Analysis.Result.Conflicts[0].Type)
	}
	if resp.Report.TotalIssues == 0 {
		t.Error("Expected the report to surface the conflict")
	}
}
