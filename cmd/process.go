package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parkerlow/corpusmill/internal/corpus"
	"github.com/parkerlow/corpusmill/internal/pipeline"
	"github.com/parkerlow/corpusmill/internal/store"
)

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Runs the extraction stage",
		Long: `Blocks until the fetch-complete marker appears, extracts text and
statistics from every raw HTML document, writes one processed record per
document, and publishes the process-complete marker.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			stage := pipeline.NewProcessStage(
				store.NewRawStore(app.Cfg.Store.RawDir),
				store.NewProcessedStore(app.Cfg.Store.ProcessedDir),
				store.NewMarkerStore(app.Cfg.Store.StatusDir),
				newWaiter(app, corpus.FetchCompleteMarker),
				clock,
				app.Cfg.Pipeline.Concurrency,
				app.Logger,
				app.Hub,
			)
			if err := stage.Run(cmd.Context()); err != nil {
				return fmt.Errorf("run extraction stage: %w", err)
			}
			return nil
		},
	}
}
