package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/parkerlow/corpusmill/internal/probe"
)

func newProbeCmd() *cobra.Command {
	var (
		urlFile string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probes HTTP endpoints and writes structured results",
		Long: `Issues one GET per URL and writes responses.json, summary.json, and
errors.log to the output directory. One-shot; does not touch the shared
store or its markers.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			urls, err := readURLFile(urlFile)
			if err != nil {
				return err
			}

			prober := probe.New(&http.Client{Timeout: app.Cfg.HTTPTimeout()}, clock, app.Logger)
			results, summary := prober.Run(cmd.Context(), urls)
			if err := probe.WriteOutputs(outDir, results, summary); err != nil {
				return fmt.Errorf("write probe outputs: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&urlFile, "urls", "", "file with one URL per line")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory")
	_ = cmd.MarkFlagRequired("urls")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
