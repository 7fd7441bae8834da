package main

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"cadence/internal/cache"
	"cadence/internal/config"
	"cadence/internal/docstore"
	"cadence/internal/logging"
	"cadence/internal/planstore"
	"cadence/internal/records"
	"cadence/internal/routine"
)

type commandContext struct {
	configFlag *string
	userFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, userFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		userFlag:   userFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// userID resolves the acting user: the --user flag wins over the configured
// identity. Commands touching per-user state require one.
func (c *commandContext) userID() (string, error) {
	if c.userFlag != nil {
		if id := strings.TrimSpace(*c.userFlag); id != "" {
			return id, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if id := strings.TrimSpace(cfg.Identity.UserID); id != "" {
		return id, nil
	}
	return "", errors.New("no user id configured; set identity.user_id or pass --user")
}

// quietLogger keeps CLI output clean: warnings and errors only, to stderr.
func (c *commandContext) quietLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.New(logging.Options{
			Level:       "warn",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openCache() (*cache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return cache.Open(cfg.DatabasePath())
}

func (c *commandContext) remoteStore() (docstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return docstore.NewConfiguredStore(cfg), nil
}

// withPlanStore opens the cache and plan store, runs fn, then flushes
// pending remote pushes before closing.
func (c *commandContext) withPlanStore(fn func(*planstore.Store, *cache.Store) error) error {
	local, err := c.openCache()
	if err != nil {
		return err
	}
	defer local.Close()
	remote, err := c.remoteStore()
	if err != nil {
		return err
	}
	plans := planstore.New(local, remote, c.quietLogger())
	defer plans.Flush()
	return fn(plans, local)
}

func (c *commandContext) withRecorder(fn func(*records.Store) error) error {
	local, err := c.openCache()
	if err != nil {
		return err
	}
	defer local.Close()
	remote, err := c.remoteStore()
	if err != nil {
		return err
	}
	recorder := records.New(local, remote, c.quietLogger())
	defer recorder.Flush()
	return fn(recorder)
}

func (c *commandContext) library() (*routine.Library, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return routine.LoadLibrary(cfg.RoutinesPath())
}
