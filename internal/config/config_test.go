package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cadence/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Execution.DayBoundaryHour != 4 {
		t.Fatalf("day boundary default = %d, want 4", cfg.Execution.DayBoundaryHour)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[identity]
user_id = "  user-1  "

[notifications]
ntfy_topic = " https://ntfy.sh/cadence "

[sync]
enabled = true
base_url = "https://sync.example.com/"

[execution]
day_boundary_hour = 6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Identity.UserID != "user-1" {
		t.Fatalf("user id = %q", cfg.Identity.UserID)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/cadence" {
		t.Fatalf("ntfy topic = %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Sync.BaseURL != "https://sync.example.com" {
		t.Fatalf("base url = %q, want trailing slash stripped", cfg.Sync.BaseURL)
	}
	if cfg.Execution.DayBoundaryHour != 6 {
		t.Fatalf("day boundary = %d", cfg.Execution.DayBoundaryHour)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "day boundary out of range",
			mutate: func(c *config.Config) { c.Execution.DayBoundaryHour = 24 },
			want:   "day_boundary_hour",
		},
		{
			name:   "sync enabled without url",
			mutate: func(c *config.Config) { c.Sync.Enabled = true },
			want:   "sync.base_url",
		},
		{
			name:   "bad log format",
			mutate: func(c *config.Config) { c.Logging.Format = "yaml" },
			want:   "logging.format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("load sample: exists=%v err=%v", exists, err)
	}
}
