package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var (
	ingestWorkers int
	ingestTimeout time.Duration
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <corpus-file>",
	Short: "Bulk-load a theorem corpus and report index statistics",
	Long: `Ingest validates and indexes every record of a YAML or JSON corpus
file through a worker pool, then prints corpus statistics. Invalid
records are reported and skipped.

Example:
  normlens ingest precedent.yaml
  normlens ingest precedent.json --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "ingest workers (default from config)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 10*time.Minute, "total ingest timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	cfg := loadConfig()
	if ingestWorkers > 0 {
		cfg.Concurrency.IngestWorkers = ingestWorkers
	}

	rt, err := buildRuntime(cfg)
	if err != nil {
		return err
	}

	summary, err := rt.ingester.IngestFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	for _, o := range summary.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "record %d rejected: %v\n", o.Index+1, o.Err)
		}
	}

	fmt.Printf("Ingested %d of %d records (%d rejected)\n",
		summary.Succeeded, summary.Total, summary.Failed)

	stats := rt.api.Statistics()
	fmt.Printf("\nCorpus statistics:\n")
	fmt.Printf("  theorems:         %d\n", stats.TotalTheorems)
	fmt.Printf("  avg strength:     %.2f\n", stats.AvgPrecedentStrength)
	fmt.Printf("  jurisdictions:\n")
	for _, k := range sortedKeys(stats.Jurisdictions) {
		fmt.Printf("    %-18s %d\n", k, stats.Jurisdictions[k])
	}
	fmt.Printf("  legal domains:\n")
	for _, k := range sortedKeys(stats.LegalDomains) {
		fmt.Printf("    %-18s %d\n", k, stats.LegalDomains[k])
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) rejected", summary.Failed)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
