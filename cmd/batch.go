package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/leadfile"
	"github.com/sells-group/enrich-cli/internal/model"
)

var batchLimit int

var batchCmd = &cobra.Command{
	Use:   "batch <leads-file>",
	Short: "Batch enrich leads from a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		leads, err := loadLeads(ctx, args[0])
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			zap.L().Info("no leads found in file", zap.String("file", args[0]))
			return nil
		}

		if batchLimit > 0 && len(leads) > batchLimit {
			leads = leads[:batchLimit]
		}

		p := newPipeline()
		items := p.EnrichBatch(ctx, leads)

		var enriched, rejected int
		for _, item := range items {
			if item.Error != "" {
				rejected++
				continue
			}
			enriched++
		}
		zap.L().Info("batch complete",
			zap.Int("enriched", enriched),
			zap.Int("rejected", rejected),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of leads to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

func loadLeads(ctx context.Context, path string) ([]model.Lead, error) {
	leads, err := leadfile.Load(ctx, path)
	if err != nil {
		return nil, eris.Wrap(err, "load leads")
	}
	zap.L().Info("leads loaded", zap.String("file", path), zap.Int("count", len(leads)))
	return leads, nil
}
