// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"cadence/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Identity.UserID = "test-user"
	cfg.Execution.SettleDelaySeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithUserID overrides the signed-in user on the test config.
func WithUserID(userID string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Identity.UserID = userID
	}
}

// WithSync points the test config at a remote document service.
func WithSync(baseURL, token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sync.Enabled = true
		cfg.Sync.BaseURL = baseURL
		cfg.Sync.APIToken = token
	}
}

// WithNtfyTopic enables reminder delivery against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}
