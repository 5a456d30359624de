package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/enrich-cli/internal/model"
)

var (
	enrichFile string
	enrichLead model.Lead
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a single lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		lead := enrichLead
		if enrichFile != "" {
			data, err := os.ReadFile(enrichFile)
			if err != nil {
				return eris.Wrap(err, "read lead file")
			}
			if err := json.Unmarshal(data, &lead); err != nil {
				return eris.Wrap(err, "parse lead file")
			}
		}

		p := newPipeline()
		result, err := p.Enrich(cmd.Context(), lead)
		if err != nil {
			return eris.Wrap(err, "enrich lead")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichFile, "file", "", "path to a JSON lead file (overrides flags)")
	enrichCmd.Flags().StringVar(&enrichLead.Company, "company", "", "company name")
	enrichCmd.Flags().StringVar(&enrichLead.Contact, "contact", "", "contact full name")
	enrichCmd.Flags().StringVar(&enrichLead.Title, "title", "", "contact title")
	enrichCmd.Flags().StringVar(&enrichLead.Email, "email", "", "contact email address")
	enrichCmd.Flags().StringVar(&enrichLead.Website, "website", "", "company website")
	enrichCmd.Flags().StringVar(&enrichLead.Industry, "industry", "", "industry label")
	enrichCmd.Flags().StringVar(&enrichLead.Employees, "employees", "", "employee-count bucket, e.g. 50-200")
	enrichCmd.Flags().StringVar(&enrichLead.Revenue, "revenue", "", "revenue bucket, e.g. $5M-$10M")
	rootCmd.AddCommand(enrichCmd)
}
