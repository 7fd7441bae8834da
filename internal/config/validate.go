package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateExecution(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	if !c.Sync.Enabled {
		return nil
	}
	if c.Sync.BaseURL == "" {
		return errors.New("sync.base_url must be set when sync.enabled is true")
	}
	parsed, err := url.Parse(c.Sync.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("sync.base_url %q is not a valid URL", c.Sync.BaseURL)
	}
	if c.Sync.RequestTimeout <= 0 {
		return errors.New("sync.request_timeout must be positive")
	}
	if c.Sync.PollInterval <= 0 {
		return errors.New("sync.poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateExecution() error {
	if c.Execution.DayBoundaryHour < 0 || c.Execution.DayBoundaryHour > 23 {
		return errors.New("execution.day_boundary_hour must be between 0 and 23")
	}
	if c.Execution.SettleDelaySeconds < 0 {
		return errors.New("execution.settle_delay_seconds must not be negative")
	}
	if c.Execution.DefaultSetCount <= 0 {
		return errors.New("execution.default_set_count must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
