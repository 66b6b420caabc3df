package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/credibility/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

func newSourcesCommand(root *rootOptions) *cobra.Command {
	var filter domain.ReputationFilter

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List tracked source reputations",
		Long:  `Prints the stored source reputations of the configured backend as a table.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
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

			recs, total, err := app.Store.List(cmd.Context(), filter.Normalize())
			if err != nil {
				return fmt.Errorf("list sources: %w", err)
			}
			if total == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sources tracked")
				return nil
			}

			renderSources(cmd.OutOrStdout(), recs, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "domain substring")
	cmd.Flags().StringVar(&filter.Category, "category", "", "exact category")
	cmd.Flags().StringVar(&filter.SortBy, "sort-by", domain.SortByDomain,
		"domain, trust_score, votes or updated_at")
	cmd.Flags().StringVar(&filter.SortOrder, "order", domain.SortAsc, "asc or desc")
	cmd.Flags().IntVar(&filter.Limit, "limit", domain.DefaultListLimit, "maximum rows")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "rows to skip")
	return cmd
}

func renderSources(w io.Writer, recs []*domain.SourceReputation, total int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Domain", "Trust", "Up", "Down", "Category", "Updated"})
	for _, r := range recs {
		t.AppendRow(table.Row{
			r.Domain,
			r.TrustScore,
			r.Upvotes,
			r.Downvotes,
			r.Category,
			r.UpdatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", total})
	t.Render()
}
