package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "YTPROGRESS_") || name == "YOUTUBE_API_KEY" {
			t.Setenv(name, "")
		}
	}
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "ytprogress.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(viper.New(), []string{t.TempDir()})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != *want {
		t.Errorf("load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `
playlist_id: PL123
api_key: from-file
max_retries: 7
initial_backoff: 250ms
batch_lookups: true
cache_path: /tmp/yt.db
logging:
  level: debug
`)

	cfg, err := load(viper.New(), []string{dir})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.PlaylistID != "PL123" || cfg.APIKey != "from-file" {
		t.Errorf("ids = %q %q", cfg.PlaylistID, cfg.APIKey)
	}
	if cfg.MaxRetries != 7 || cfg.InitialBackoff != 250*time.Millisecond {
		t.Errorf("retry = %d %v", cfg.MaxRetries, cfg.InitialBackoff)
	}
	if !cfg.BatchLookups || cfg.CachePath != "/tmp/yt.db" {
		t.Errorf("cache = %v %q", cfg.BatchLookups, cfg.CachePath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "playlist_id: PL-file\nmax_retries: 7\n")
	t.Setenv("YTPROGRESS_PLAYLIST_ID", "PL-env")
	t.Setenv("YTPROGRESS_MAX_RETRIES", "1")
	t.Setenv("YTPROGRESS_LOGGING_LEVEL", "ERROR")

	cfg, err := load(viper.New(), []string{dir})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.PlaylistID != "PL-env" || cfg.MaxRetries != 1 || cfg.Logging.Level != "ERROR" {
		t.Errorf("load() = %+v", cfg)
	}
}

func TestLoad_APIKeyEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"youtube key", map[string]string{"YOUTUBE_API_KEY": "yt"}, "yt"},
		{"prefixed key", map[string]string{"YTPROGRESS_API_KEY": "prefixed"}, "prefixed"},
		{"prefixed wins", map[string]string{"YTPROGRESS_API_KEY": "prefixed", "YOUTUBE_API_KEY": "yt"}, "prefixed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := load(viper.New(), []string{t.TempDir()})
			if err != nil {
				t.Fatalf("load() error = %v", err)
			}
			if cfg.APIKey != tt.want {
				t.Errorf("APIKey = %q, want %q", cfg.APIKey, tt.want)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "max_retries: [oops\n")

	if _, err := load(viper.New(), []string{dir}); err == nil {
		t.Error("load() should fail on malformed yaml")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "backoff_multiplier: 1\n")

	if _, err := load(viper.New(), []string{dir}); err == nil {
		t.Error("load() should reject backoff_multiplier 1")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty completed file", func(c *Config) { c.CompletedFile = "" }, "completed_file"},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }, "cache_ttl"},
		{"zero rate", func(c *Config) { c.RequestsPerSecond = 0 }, "requests_per_second"},
		{"zero timeout ok", func(c *Config) { c.RequestTimeout = 0 }, ""},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "request_timeout"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max_retries"},
		{"zero retries ok", func(c *Config) { c.MaxRetries = 0 }, ""},
		{"zero initial backoff", func(c *Config) { c.InitialBackoff = 0 }, "initial_backoff"},
		{"zero max backoff", func(c *Config) { c.MaxBackoff = 0 }, "max_backoff"},
		{"max below initial", func(c *Config) { c.MaxBackoff = c.InitialBackoff / 2 }, "max_backoff"},
		{"multiplier one", func(c *Config) { c.BackoffMultiplier = 1 }, "backoff_multiplier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
