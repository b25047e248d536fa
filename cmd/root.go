package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parkerlow/corpusmill/internal/config"
	"github.com/parkerlow/corpusmill/internal/corpus"
	"github.com/parkerlow/corpusmill/internal/logging"
	"github.com/parkerlow/corpusmill/internal/metrics"
	"github.com/parkerlow/corpusmill/internal/progress"
	"github.com/parkerlow/corpusmill/internal/progress/sinks"
	"github.com/parkerlow/corpusmill/internal/server"
	"github.com/parkerlow/corpusmill/internal/store"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// App bundles the services every subcommand needs. It is built once in
// PersistentPreRunE and torn down in PersistentPostRun.
type App struct {
	Cfg    config.Config
	Logger *zap.Logger
	Hub    *progress.Hub
	ops    *server.Server
}

// Close flushes the event hub and stops the ops server.
func (a *App) Close(ctx context.Context) {
	if a.Hub != nil {
		if err := a.Hub.Close(ctx); err != nil {
			a.Logger.Warn("event hub close failed", zap.Error(err))
		}
	}
	if a.ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.ops.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("ops server shutdown failed", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

// newApp is the application factory. It is a variable so tests can replace
// it with a factory returning fakes.
var newApp = func(context.Context) (*App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	metrics.Init()
	app := &App{
		Cfg:    cfg,
		Logger: logger,
		Hub:    progress.NewHub(progress.Config{Logger: logger}, sinks.NewLogSink(logger), sinks.NewPrometheusSink()),
	}
	if cfg.Metrics.Enabled {
		app.ops = server.New(fmt.Sprintf(":%d", cfg.Metrics.Port), logger)
		app.ops.Start()
	}
	return app, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpusmill",
		Short: "File-coordinated HTML processing and analysis pipeline.",
		Long: `corpusmill runs a two-stage document pipeline over a shared filesystem
store: an extraction stage turns raw HTML into normalized text records, and
an analysis stage aggregates those records into a single corpus report.
Stages run as independent processes and coordinate only through readiness
marker files. Companion one-shot tools fetch seed pages, probe HTTP
endpoints, and harvest arXiv metadata.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, ok := cmd.Context().Value(appKey).(*App); ok && app != nil {
				app.Close(cmd.Context())
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML; defaults apply when unset)")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newArxivCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey).(*App)
	if !ok || app == nil {
		return nil, errors.New("application services not initialized")
	}
	return app, nil
}

// newWaiter builds the configured readiness waiter for one marker file.
func newWaiter(app *App, markerName string) store.Waiter {
	markers := store.NewMarkerStore(app.Cfg.Store.StatusDir)
	if app.Cfg.Pipeline.WatchMarkers {
		return store.NewWatchWaiter(markers.Path(markerName), app.Logger)
	}
	return store.NewPollWaiter(markers.Path(markerName), app.Cfg.PollInterval(), app.Logger)
}

// readURLFile loads one URL per non-empty line.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}
	return urls, nil
}

// clock is the shared wall clock for all subcommands.
var clock corpus.Clock = corpus.SystemClock{}
