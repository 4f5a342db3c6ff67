// Package cli wires the cobra commands: check, query, add, ingest,
// config, version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/normlens/normlens/internal/api"
	"github.com/normlens/normlens/internal/embed"
	"github.com/normlens/normlens/internal/ingest"
	"github.com/normlens/normlens/internal/model"
	"github.com/normlens/normlens/internal/pipeline"
	"github.com/normlens/normlens/internal/store"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "normlens",
	Short: "normlens - legal consistency debugger",
	Long: `normlens extracts deontic statements (obligations, permissions,
prohibitions) from legal text, retrieves relevant precedent from an
indexed theorem corpus, and reports logical conflicts between the
document and established rulings.

normlens flags contradictions; it does not give legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("normlens v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.normlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.normlens")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("NORMLENS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults, then config
// file / NORMLENS_* env overrides for the commonly tuned keys
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("embedding.provider"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := viper.GetString("embedding.model"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := viper.GetString("embedding.api_key"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := viper.GetString("embedding.base_url"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := viper.GetInt("embedding.dimensions"); v > 0 {
		cfg.Embedding.Dimensions = v
	}
	if v := viper.GetString("embedding.cache_dir"); v != "" {
		cfg.Embedding.CacheDir = v
	}
	if v := viper.GetInt("store.default_top_k"); v > 0 {
		cfg.Store.DefaultTopK = v
	}
	if v := viper.GetString("pipeline.jurisdiction"); v != "" {
		cfg.Pipeline.Jurisdiction = v
	}
	if v := viper.GetString("pipeline.legal_domain"); v != "" {
		cfg.Pipeline.LegalDomain = v
	}
	if v := viper.GetInt("concurrency.ingest_workers"); v > 0 {
		cfg.Concurrency.IngestWorkers = v
	}

	// Provider API keys come from the environment, never from flags.
	if cfg.Embedding.Provider == "openai" && cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Embedding.Provider == "ollama" && cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	cfg.Output.Verbose = verbose
	return cfg
}

// runtime bundles the wired components behind every command
type runtime struct {
	config   *model.Config
	store    *store.TheoremStore
	pipeline *pipeline.Pipeline
	api      *api.API
	ingester *ingest.Ingester
}

// buildRuntime wires provider, store, pipeline, and the envelope API
func buildRuntime(cfg *model.Config) (*runtime, error) {
	provider, err := embed.NewProvider(embed.ConfigFromModel(cfg.Embedding))
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Embedding provider: %s (%d dims)\n", provider.Name(), provider.Dimensions())
	}

	s := store.NewTheoremStore(provider, cfg.Store)
	p := pipeline.NewPipeline(s, cfg)
	return &runtime{
		config:   cfg,
		store:    s,
		pipeline: p,
		api:      api.New(p, s, cfg),
		ingester: ingest.NewIngester(s, cfg),
	}, nil
}
