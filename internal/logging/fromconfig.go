package logging

import (
	"log/slog"
	"path/filepath"

	"cadence/internal/config"
)

// NewFromConfig builds the daemon logger: configured format and level,
// writing to stdout and the log file under the configured log dir.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	return New(Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			"stdout",
			filepath.Join(cfg.Paths.LogDir, "cadenced.log"),
		},
	})
}
