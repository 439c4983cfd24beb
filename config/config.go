// Package config manages application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration for progress tracking.
type Config struct {
	// APIKey is the YouTube Data API key. YOUTUBE_API_KEY is also honored.
	APIKey string `mapstructure:"api_key"`
	// PlaylistID is the playlist to track. It has no default.
	PlaylistID string `mapstructure:"playlist_id"`
	// CompletedFile is the path of the completion set file.
	CompletedFile string `mapstructure:"completed_file"`

	// CachePath is the metadata cache database. Empty disables caching.
	CachePath string `mapstructure:"cache_path"`
	// CacheTTL is how long cached durations and descriptions stay valid.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// BatchLookups requests up to 50 durations per videos.list call.
	BatchLookups bool `mapstructure:"batch_lookups"`

	// RequestsPerSecond caps outgoing API calls.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	// RequestTimeout bounds a whole command, playlist load included. Zero
	// means no deadline beyond per-request HTTP timeouts.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// MaxRetries is the maximum number of retries for failed operations
	MaxRetries int `mapstructure:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
	// BackoffMultiplier is the multiplier for exponential backoff (must be > 1)
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// File receives JSON logs when set; otherwise logs go to stderr as text.
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		CompletedFile:     "completed_videos.json",
		CacheTTL:          24 * time.Hour,
		BatchLookups:      false,
		RequestsPerSecond: 5,
		RequestTimeout:    0,
		MaxRetries:        3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Logging: LoggingConfig{
			Level: "WARN",
		},
	}
}

// defaultConfigPaths returns the directories searched for ytprogress.yaml.
func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ytprogress"))
	}
	return paths
}

// Load loads configuration from environment variables, config file, and applies defaults.
// Priority: env vars > config file > defaults
func Load() (*Config, error) {
	return load(viper.New(), defaultConfigPaths())
}

func load(v *viper.Viper, paths []string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetConfigName("ytprogress")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("YTPROGRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "YTPROGRESS_API_KEY", "YOUTUBE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api key env: %w", err)
	}

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can reach it through Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api_key", cfg.APIKey)
	v.SetDefault("playlist_id", cfg.PlaylistID)
	v.SetDefault("completed_file", cfg.CompletedFile)
	v.SetDefault("cache_path", cfg.CachePath)
	v.SetDefault("cache_ttl", cfg.CacheTTL)
	v.SetDefault("batch_lookups", cfg.BatchLookups)
	v.SetDefault("requests_per_second", cfg.RequestsPerSecond)
	v.SetDefault("request_timeout", cfg.RequestTimeout)
	v.SetDefault("max_retries", cfg.MaxRetries)
	v.SetDefault("initial_backoff", cfg.InitialBackoff)
	v.SetDefault("max_backoff", cfg.MaxBackoff)
	v.SetDefault("backoff_multiplier", cfg.BackoffMultiplier)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if c.CompletedFile == "" {
		return fmt.Errorf("completed_file must not be empty")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive")
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff <= 0 {
		return fmt.Errorf("max_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff_multiplier must be > 1")
	}
	return nil
}
