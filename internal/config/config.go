// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// StoreConfig locates the shared stores. The per-store directories default to
// subdirectories of SharedDir but can each be pointed elsewhere.
type StoreConfig struct {
	SharedDir    string `mapstructure:"shared_dir"`
	RawDir       string `mapstructure:"raw_dir"`
	ProcessedDir string `mapstructure:"processed_dir"`
	AnalysisDir  string `mapstructure:"analysis_dir"`
	StatusDir    string `mapstructure:"status_dir"`
}

// PipelineConfig governs stage behavior.
type PipelineConfig struct {
	PollIntervalMs int  `mapstructure:"poll_interval_ms"`
	WatchMarkers   bool `mapstructure:"watch_markers"`
	Concurrency    int  `mapstructure:"concurrency"`
	TopWords       int  `mapstructure:"top_words"`
	TopNgrams      int  `mapstructure:"top_ngrams"`
}

// FetchConfig governs the raw-store fetch stage.
type FetchConfig struct {
	URLs      []string `mapstructure:"urls"`
	UserAgent string   `mapstructure:"user_agent"`
}

// HTTPConfig configures outbound HTTP client retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxRetries       int `mapstructure:"max_retries"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// LoggingConfig toggles zap development features and optional file output.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

// MetricsConfig controls the optional ops endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CORPUSMILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Store.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.shared_dir", "/shared")
	v.SetDefault("pipeline.poll_interval_ms", 2000)
	v.SetDefault("pipeline.watch_markers", false)
	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("pipeline.top_words", 100)
	v.SetDefault("pipeline.top_ngrams", 50)
	v.SetDefault("fetch.user_agent", "corpusmill/0.1")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 2000)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 14)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
}

func (s *StoreConfig) applyDefaults() {
	if s.RawDir == "" {
		s.RawDir = filepath.Join(s.SharedDir, "raw")
	}
	if s.ProcessedDir == "" {
		s.ProcessedDir = filepath.Join(s.SharedDir, "processed")
	}
	if s.AnalysisDir == "" {
		s.AnalysisDir = filepath.Join(s.SharedDir, "analysis")
	}
	if s.StatusDir == "" {
		s.StatusDir = filepath.Join(s.SharedDir, "status")
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Store.SharedDir == "" {
		return fmt.Errorf("store.shared_dir must be set")
	}
	if c.Pipeline.PollIntervalMs <= 0 {
		return fmt.Errorf("pipeline.poll_interval_ms must be > 0")
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be > 0")
	}
	if c.Pipeline.TopWords <= 0 {
		return fmt.Errorf("pipeline.top_words must be > 0")
	}
	if c.Pipeline.TopNgrams <= 0 {
		return fmt.Errorf("pipeline.top_ngrams must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// PollInterval converts the poll interval config into a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Pipeline.PollIntervalMs) * time.Millisecond
}

// HTTPTimeout converts the HTTP timeout config into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
