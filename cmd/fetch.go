// Package cmd defines and implements the CLI commands for the corpusmill
// executable.
package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/parkerlow/corpusmill/internal/fetch"
	"github.com/parkerlow/corpusmill/internal/pipeline"
	"github.com/parkerlow/corpusmill/internal/retry"
	"github.com/parkerlow/corpusmill/internal/store"
)

func newFetchCmd() *cobra.Command {
	var urlFile string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetches seed URLs into the raw store",
		Long: `Fetches each seed URL, writes the response body into the raw store, and
publishes the fetch-complete marker. Seed URLs come from --urls (one per
line) or from the fetch.urls config list.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			urls := app.Cfg.Fetch.URLs
			if urlFile != "" {
				urls, err = readURLFile(urlFile)
				if err != nil {
					return err
				}
			}
			if len(urls) == 0 {
				return errors.New("no seed urls: pass --urls or set fetch.urls")
			}

			fetcher := fetch.NewCollyFetcher(fetch.Config{
				UserAgent: app.Cfg.Fetch.UserAgent,
				Timeout:   app.Cfg.HTTPTimeout(),
			}, app.Logger)
			policy := retry.NewPolicy(
				app.Cfg.HTTP.MaxRetries,
				time.Duration(app.Cfg.HTTP.BackoffInitialMs)*time.Millisecond,
				time.Duration(app.Cfg.HTTP.BackoffMaxMs)*time.Millisecond,
			)

			stage := pipeline.NewFetchStage(
				fetcher,
				store.NewRawStore(app.Cfg.Store.RawDir),
				store.NewMarkerStore(app.Cfg.Store.StatusDir),
				policy,
				clock,
				app.Logger,
				app.Hub,
			)
			if err := stage.Run(cmd.Context(), urls); err != nil {
				return fmt.Errorf("run fetch stage: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&urlFile, "urls", "", "file with one seed URL per line")
	return cmd
}
