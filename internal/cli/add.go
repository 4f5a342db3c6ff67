package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/normlens/normlens/internal/api"
	"github.com/normlens/normlens/internal/ingest"
)

var (
	addOperator     string
	addProposition  string
	addAgent        string
	addJurisdiction string
	addDomain       string
	addSourceCase   string
	addStrength     float64
	addStart        string
	addEnd          string
	addAppendTo     string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Validate a theorem and append it to a corpus file",
	Long: `Add validates one theorem through the same checks bulk ingestion
uses, indexes it, and optionally appends it to a YAML corpus file so
later runs see it.

Example:
  normlens add --operator PROHIBITION --proposition "disclose confidential information" \
    --agent employee --jurisdiction Federal --domain employment \
    --source-case "Doe v. Acme" --strength 0.9 --start 2000-01-01 \
    --append-to precedent.yaml`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addOperator, "operator", "", "deontic operator (OBLIGATION, PERMISSION, PROHIBITION)")
	addCmd.Flags().StringVar(&addProposition, "proposition", "", "normalized action text")
	addCmd.Flags().StringVar(&addAgent, "agent", "", "bound agent (optional)")
	addCmd.Flags().StringVar(&addJurisdiction, "jurisdiction", "", "jurisdiction (default from config)")
	addCmd.Flags().StringVar(&addDomain, "domain", "", "legal domain (default from config)")
	addCmd.Flags().StringVar(&addSourceCase, "source-case", "", "originating case or citation")
	addCmd.Flags().Float64Var(&addStrength, "strength", 0.5, "precedent strength in [0,1]")
	addCmd.Flags().StringVar(&addStart, "start", "", "validity start, RFC 3339 or YYYY-MM-DD (default now)")
	addCmd.Flags().StringVar(&addEnd, "end", "", "validity end; empty means unbounded")
	addCmd.Flags().StringVar(&addAppendTo, "append-to", "", "YAML corpus file to append the record to")

	_ = addCmd.MarkFlagRequired("operator")
	_ = addCmd.MarkFlagRequired("proposition")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rt, err := buildRuntime(loadConfig())
	if err != nil {
		return err
	}

	resp := rt.api.AddTheorem(ctx, api.AddRequest{
		Operator:          addOperator,
		Proposition:       addProposition,
		AgentName:         addAgent,
		Jurisdiction:      addJurisdiction,
		LegalDomain:       addDomain,
		SourceCase:        addSourceCase,
		PrecedentStrength: addStrength,
		StartDate:         addStart,
		EndDate:           addEnd,
	})
	if !resp.Success {
		return fmt.Errorf("%s: %s", resp.ErrorCode, resp.Error)
	}
	fmt.Printf("Added theorem %s\n", resp.TheoremID)

	if addAppendTo != "" {
		if err := appendToCorpus(addAppendTo); err != nil {
			return fmt.Errorf("append to corpus: %w", err)
		}
		fmt.Printf("Appended to %s\n", addAppendTo)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err == nil && verbose {
		fmt.Fprintln(os.Stderr, string(out))
	}
	return nil
}

// appendToCorpus rewrites the corpus file with the new record included
func appendToCorpus(path string) error {
	records := []ingest.Record{}
	if _, err := os.Stat(path); err == nil {
		existing, err := ingest.LoadCorpus(path)
		if err != nil {
			return err
		}
		records = existing
	}

	records = append(records, ingest.Record{
		Operator:          addOperator,
		Proposition:       addProposition,
		Agent:             addAgent,
		Jurisdiction:      addJurisdiction,
		LegalDomain:       addDomain,
		SourceCase:        addSourceCase,
		PrecedentStrength: addStrength,
		StartDate:         addStart,
		EndDate:           addEnd,
	})

	data, err := yaml.Marshal(map[string][]ingest.Record{"theorems": records})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
