package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/parkerlow/corpusmill/internal/arxiv"
)

func newArxivCmd() *cobra.Command {
	var (
		query      string
		maxResults int
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "arxiv",
		Short: "Harvests arXiv paper metadata and abstract statistics",
		Long: `Queries the arXiv Atom API for paper metadata, computes per-abstract and
corpus-level statistics, and writes papers.json, corpus_analysis.json, and
processing.log to the output directory. One-shot; does not touch the shared
store or its markers.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			client := arxiv.NewClient(&http.Client{Timeout: app.Cfg.HTTPTimeout()}, "", nil, app.Logger)
			harvester := arxiv.NewHarvester(client, clock, app.Logger)
			if err := harvester.Run(cmd.Context(), query, maxResults, outDir); err != nil {
				return fmt.Errorf("run harvest: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "arXiv search query")
	cmd.Flags().IntVar(&maxResults, "max", 10, "maximum results (1..100)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
