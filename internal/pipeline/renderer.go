package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/normlens/normlens/internal/model"
)

// Renderer writes analyses and debug reports to JSON and Markdown
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// checkOutput is the combined JSON document written per check
type checkOutput struct {
	Analysis *model.ConsistencyAnalysis `json:"analysis"`
	Report   *model.DebugReport         `json:"report"`
}

// RenderJSON writes the analysis and report as indented JSON
func (r *Renderer) RenderJSON(analysis *model.ConsistencyAnalysis, report *model.DebugReport, path string) error {
	data, err := json.MarshalIndent(checkOutput{Analysis: analysis, Report: report}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes the debug report as a Markdown document
func (r *Renderer) RenderMarkdown(analysis *model.ConsistencyAnalysis, report *model.DebugReport, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Consistency Report: %s\n\n", report.DocumentID)
	fmt.Fprintf(&b, "Checked at %s against %s / %s law.\n\n",
		analysis.CheckedAt.Format(time.RFC3339), analysis.Jurisdiction, analysis.LegalDomain)
	fmt.Fprintf(&b, "**%s**\n\n", report.Summary)

	if len(analysis.Statements) > 0 {
		fmt.Fprintf(&b, "## Statements (%d)\n\n", len(analysis.Statements))
		for _, s := range analysis.Statements {
			fmt.Fprintf(&b, "- `%s` [%s] %s: %s (confidence %.2f)\n",
				s.ID, s.Modality, s.Entity, s.Action, s.Confidence)
		}
		b.WriteString("\n")
	}

	if report.TotalIssues > 0 {
		fmt.Fprintf(&b, "## Issues (%d)\n\n", report.TotalIssues)
		for i, issue := range report.Issues {
			fmt.Fprintf(&b, "%d. **[%s/%s]** %s\n", i+1, issue.Severity, issue.Category, issue.Message)
			if issue.Suggestion != "" {
				fmt.Fprintf(&b, "   - Fix: %s\n", issue.Suggestion)
			}
		}
		b.WriteString("\n")
	}

	if len(analysis.Result.RelevantTheorems) > 0 {
		fmt.Fprintf(&b, "## Relevant Precedent (%d)\n\n", len(analysis.Result.RelevantTheorems))
		for _, t := range analysis.Result.RelevantTheorems {
			fmt.Fprintf(&b, "- %s (%s, %s, strength %.2f)\n",
				t.Formula.Text(), t.Jurisdiction, t.SourceCase, t.PrecedentStrength)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\nGenerated by normlens. Overall confidence: %.2f.\n",
			analysis.Result.ConfidenceScore)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a one-screen verdict to stdout
func (r *Renderer) RenderSummary(analysis *model.ConsistencyAnalysis, report *model.DebugReport) {
	verdict := "CONSISTENT"
	if !analysis.Result.IsConsistent {
		verdict = "INCONSISTENT"
	}
	fmt.Printf("\n%s: %s\n", analysis.DocumentID, verdict)
	fmt.Printf("  statements: %d  conflicts: %d  temporal: %d  confidence: %.2f\n",
		len(analysis.Statements),
		len(analysis.Result.Conflicts),
		len(analysis.Result.TemporalConflicts),
		analysis.Result.ConfidenceScore)
	if report.TotalIssues > 0 {
		fmt.Printf("  issues: %d critical, %d warnings, %d suggestions\n",
			report.CriticalErrors, report.Warnings, report.Suggestions)
	}
	fmt.Printf("  %s\n", report.Summary)
}
