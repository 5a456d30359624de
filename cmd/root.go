package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/pipeline"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
	"github.com/sells-group/enrich-cli/pkg/builtwith"
	"github.com/sells-group/enrich-cli/pkg/clearbit"
	"github.com/sells-group/enrich-cli/pkg/hunter"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "enrich-cli",
	Short: "Sales lead enrichment pipeline",
	Long:  "Validates leads against multiple data sources, scores them, and drafts personalized outreach emails.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newPipeline wires the source adapters and returns a ready pipeline.
func newPipeline() *pipeline.Pipeline {
	hunterClient := hunter.NewClient(cfg.Hunter.Key,
		hunter.WithBaseURL(cfg.Hunter.BaseURL),
		hunter.WithRateLimit(cfg.Hunter.RPS),
	)
	clearbitClient := clearbit.NewClient(cfg.Clearbit.Key,
		clearbit.WithBaseURL(cfg.Clearbit.BaseURL),
		clearbit.WithRateLimit(cfg.Clearbit.RPS),
	)
	builtwithClient := builtwith.NewClient(cfg.BuiltWith.Key,
		builtwith.WithBaseURL(cfg.BuiltWith.BaseURL),
		builtwith.WithRateLimit(cfg.BuiltWith.RPS),
	)
	aiClient := anthropic.NewClient(cfg.Anthropic.Key)

	return pipeline.New(cfg, hunterClient, clearbitClient, builtwithClient, aiClient)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
