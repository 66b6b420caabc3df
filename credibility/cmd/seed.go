package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/credibility/internal/bootstrap"
)

func newSeedCommand(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert curated source reputations that are not yet stored",
		Long: `Applies reputation.seed from the config file and, when given, an Excel
workbook with domain, trust_score and category columns. Existing records
are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if file != "" {
				cfg.Reputation.SeedFile = file
			}

			log, err := cliLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			app, err := bootstrap.NewApp(cmd.Context(), cfg, log, Version)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, skipped %d\n", app.Seeded.Inserted, app.Seeded.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Excel workbook (.xlsx) of curated records")
	return cmd
}
