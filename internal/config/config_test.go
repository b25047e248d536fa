package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.SharedDir != "/shared" {
		t.Fatalf("expected default shared dir /shared, got %q", cfg.Store.SharedDir)
	}
	if cfg.Store.RawDir != "/shared/raw" || cfg.Store.StatusDir != "/shared/status" {
		t.Fatalf("expected store dirs derived from shared dir: %+v", cfg.Store)
	}
	if got := cfg.PollInterval(); got != 2*time.Second {
		t.Fatalf("expected default poll interval 2s, got %v", got)
	}
	if cfg.Pipeline.TopWords != 100 || cfg.Pipeline.TopNgrams != 50 {
		t.Fatalf("expected default table limits 100/50: %+v", cfg.Pipeline)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
store:
  shared_dir: /var/corpus
  raw_dir: /mnt/ingest/raw
pipeline:
  poll_interval_ms: 500
  watch_markers: true
  concurrency: 8
  top_words: 25
  top_ngrams: 10
fetch:
  user_agent: corpusmill-test
  urls: ["https://example.com"]
http:
  timeout_seconds: 45
  max_retries: 4
logging:
  development: false
  file: /var/log/corpusmill.log
metrics:
  enabled: true
  port: 9191
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.RawDir != "/mnt/ingest/raw" {
		t.Fatalf("expected explicit raw dir override, got %q", cfg.Store.RawDir)
	}
	if cfg.Store.ProcessedDir != "/var/corpus/processed" {
		t.Fatalf("expected processed dir derived from shared dir, got %q", cfg.Store.ProcessedDir)
	}
	if !cfg.Pipeline.WatchMarkers || cfg.Pipeline.Concurrency != 8 {
		t.Fatalf("expected pipeline overrides to apply: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.TopWords != 25 || cfg.Pipeline.TopNgrams != 10 {
		t.Fatalf("expected table-limit overrides to apply: %+v", cfg.Pipeline)
	}
	if len(cfg.Fetch.URLs) != 1 || cfg.Fetch.URLs[0] != "https://example.com" {
		t.Fatalf("expected fetch urls to be loaded: %+v", cfg.Fetch)
	}
	if got := cfg.HTTPTimeout(); got != 45*time.Second {
		t.Fatalf("expected http timeout 45s, got %v", got)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != 9191 {
		t.Fatalf("expected metrics overrides to apply: %+v", cfg.Metrics)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Store: StoreConfig{SharedDir: "/shared"},
		Pipeline: PipelineConfig{
			PollIntervalMs: 2000,
			Concurrency:    4,
			TopWords:       100,
			TopNgrams:      50,
		},
		HTTP: HTTPConfig{TimeoutSeconds: 10},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "missing shared dir",
			cfg: func() Config {
				c := base
				c.Store.SharedDir = ""
				return c
			}(),
			want: "store.shared_dir",
		},
		{
			name: "invalid poll interval",
			cfg: func() Config {
				c := base
				c.Pipeline.PollIntervalMs = 0
				return c
			}(),
			want: "pipeline.poll_interval_ms",
		},
		{
			name: "invalid concurrency",
			cfg: func() Config {
				c := base
				c.Pipeline.Concurrency = 0
				return c
			}(),
			want: "pipeline.concurrency",
		},
		{
			name: "invalid top words",
			cfg: func() Config {
				c := base
				c.Pipeline.TopWords = 0
				return c
			}(),
			want: "pipeline.top_words",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.HTTP.TimeoutSeconds = 0
				return c
			}(),
			want: "http.timeout_seconds",
		},
		{
			name: "metrics missing port",
			cfg: func() Config {
				c := base
				c.Metrics.Enabled = true
				return c
			}(),
			want: "metrics.port",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
