package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	checkCorpus       string
	checkJurisdiction string
	checkDomain       string
	checkAt           string
	outJSON           string
	outMD             string
	noFooter          bool
	checkTimeout      time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a legal document for conflicts against the theorem corpus",
	Long: `Check extracts deontic statements from a document, retrieves
relevant precedent, and reports contradictions:
- Obligations that clash with prohibitions
- Permissions a stored prohibition forbids
- Rules whose validity windows or jurisdictions cannot coexist

HTML documents are stripped to visible text before extraction.

Example:
  normlens check handbook.txt --corpus precedent.yaml
  normlens check policy.html --corpus precedent.yaml --json report.json --md report.md
  normlens check contract.txt --corpus precedent.yaml --at 2020-06-01 --jurisdiction California`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkCorpus, "corpus", "", "theorem corpus file (yaml/json) to check against")
	checkCmd.Flags().StringVar(&checkJurisdiction, "jurisdiction", "", "jurisdiction of the document (default from config)")
	checkCmd.Flags().StringVar(&checkDomain, "domain", "", "legal domain of the document (default from config)")
	checkCmd.Flags().StringVar(&checkAt, "at", "", "temporal context, RFC 3339 or YYYY-MM-DD (default now)")
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall check timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Output.IncludeFooter = !noFooter

	rt, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	if err := loadCorpus(ctx, rt, checkCorpus); err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	at, err := parseAtFlag(checkAt)
	if err != nil {
		return err
	}

	documentID := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if verbose {
		fmt.Fprintf(os.Stderr, "Checking %s (%d bytes, corpus of %d theorems)\n",
			documentID, len(data), rt.store.Len())
	}

	check := rt.pipeline.CheckDocument
	if ext := strings.ToLower(filepath.Ext(file)); ext == ".html" || ext == ".htm" {
		check = rt.pipeline.CheckHTMLDocument
	}
	analysis, err := check(ctx, string(data), documentID, at, checkJurisdiction, checkDomain)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	report := rt.pipeline.GenerateDebugReport(analysis)

	renderer := rt.pipeline.Renderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(analysis, report, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(analysis, report, outMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}
	renderer.RenderSummary(analysis, report)

	if !analysis.Result.IsConsistent {
		os.Exit(1)
	}
	return nil
}

// parseAtFlag parses the --at flag, defaulting to now
func parseAtFlag(v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse --at %q, want RFC 3339 or YYYY-MM-DD", v)
}

// loadCorpus seeds the in-memory store from a corpus file, if given
func loadCorpus(ctx context.Context, rt *runtime, path string) error {
	if path == "" {
		return nil
	}
	summary, err := rt.ingester.IngestFile(ctx, path)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if summary.Failed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d of %d corpus records rejected\n", summary.Failed, summary.Total)
		if verbose {
			for _, o := range summary.Outcomes {
				if o.Err != nil {
					fmt.Fprintf(os.Stderr, "  record %d: %v\n", o.Index+1, o.Err)
				}
			}
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Corpus loaded: %d theorems\n", summary.Succeeded)
	}
	return nil
}
