package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parkerlow/corpusmill/internal/analyze"
	"github.com/parkerlow/corpusmill/internal/corpus"
	"github.com/parkerlow/corpusmill/internal/pipeline"
	"github.com/parkerlow/corpusmill/internal/store"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Runs the analysis stage",
		Long: `Blocks until the process-complete marker appears, loads every processed
record, and writes the aggregate corpus report.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			stage := pipeline.NewAnalyzeStage(
				store.NewProcessedStore(app.Cfg.Store.ProcessedDir),
				store.NewReportStore(app.Cfg.Store.AnalysisDir),
				newWaiter(app, corpus.ProcessCompleteMarker),
				clock,
				analyze.Limits{
					TopWords:  app.Cfg.Pipeline.TopWords,
					TopNgrams: app.Cfg.Pipeline.TopNgrams,
				},
				app.Logger,
				app.Hub,
			)
			if err := stage.Run(cmd.Context()); err != nil {
				return fmt.Errorf("run analysis stage: %w", err)
			}
			return nil
		},
	}
}
