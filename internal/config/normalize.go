package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIdentity()
	c.normalizeNotifications()
	c.normalizeSync()
	c.normalizeExecution()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIdentity() {
	c.Identity.UserID = strings.TrimSpace(c.Identity.UserID)
	if c.Identity.UserID == "" {
		if value, ok := os.LookupEnv("CADENCE_USER_ID"); ok {
			c.Identity.UserID = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeSync() {
	c.Sync.BaseURL = strings.TrimRight(strings.TrimSpace(c.Sync.BaseURL), "/")
	c.Sync.APIToken = strings.TrimSpace(c.Sync.APIToken)
	if c.Sync.RequestTimeout <= 0 {
		c.Sync.RequestTimeout = defaultSyncTimeout
	}
	if c.Sync.PollInterval <= 0 {
		c.Sync.PollInterval = defaultSyncPollInterval
	}
}

func (c *Config) normalizeExecution() {
	if c.Execution.SettleDelaySeconds < 0 {
		c.Execution.SettleDelaySeconds = defaultSettleDelaySeconds
	}
	if c.Execution.DefaultSetCount <= 0 {
		c.Execution.DefaultSetCount = defaultSetCount
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
