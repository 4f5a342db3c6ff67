package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/normlens/normlens/internal/api"
)

var (
	queryCorpus       string
	queryOperator     string
	queryJurisdiction string
	queryDomain       string
	queryLimit        int
	queryMinRelevance float64
	queryTimeout      time.Duration
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search the theorem corpus by semantic similarity",
	Long: `Query ranks stored theorems against free text, blending embedding
similarity with operator, temporal, and jurisdiction agreement.

Example:
  normlens query "disclose confidential information" --corpus precedent.yaml
  normlens query "report data breaches" --corpus precedent.yaml --operator OBLIGATION --limit 5
  normlens query "sell user data" --corpus precedent.yaml --jurisdiction California --min-relevance 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryCorpus, "corpus", "", "theorem corpus file (yaml/json) to query")
	queryCmd.Flags().StringVar(&queryOperator, "operator", "all", "filter by deontic operator (OBLIGATION, PERMISSION, PROHIBITION, all)")
	queryCmd.Flags().StringVar(&queryJurisdiction, "jurisdiction", "all", "filter by jurisdiction")
	queryCmd.Flags().StringVar(&queryDomain, "domain", "all", "filter by legal domain")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 10, "maximum results")
	queryCmd.Flags().Float64Var(&queryMinRelevance, "min-relevance", 0.5, "minimum similarity threshold")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", time.Minute, "query timeout")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rt, err := buildRuntime(loadConfig())
	if err != nil {
		return err
	}
	if err := loadCorpus(ctx, rt, queryCorpus); err != nil {
		return err
	}

	resp := rt.api.QueryTheorems(ctx, api.QueryRequest{
		Query:          args[0],
		OperatorFilter: queryOperator,
		Jurisdiction:   queryJurisdiction,
		LegalDomain:    queryDomain,
		Limit:          queryLimit,
		MinRelevance:   &queryMinRelevance,
	})
	if !resp.Success {
		return fmt.Errorf("%s: %s", resp.ErrorCode, resp.Error)
	}

	if resp.Degraded {
		fmt.Fprintln(os.Stderr, "Warning: embedding provider unavailable, ranking on metadata only")
	}
	if len(resp.Results) == 0 {
		fmt.Println("No matching theorems.")
		return nil
	}

	fmt.Printf("%d matching theorem(s):\n\n", len(resp.Results))
	for i, scored := range resp.Results {
		t := scored.Theorem
		fmt.Printf("%2d. [%.3f] %s\n", i+1, scored.Score, t.Formula.Text())
		fmt.Printf("    %s / %s", t.Jurisdiction, t.LegalDomain)
		if t.SourceCase != "" {
			fmt.Printf("  (%s)", t.SourceCase)
		}
		fmt.Printf("  strength %.2f, similarity %.3f\n", t.PrecedentStrength, scored.Similarity)
	}
	return nil
}
