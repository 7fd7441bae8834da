package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"cadence/internal/cache"
	"cadence/internal/config"
	"cadence/internal/engine"
	"cadence/internal/identity"
	"cadence/internal/logging"
	"cadence/internal/notify"
	"cadence/internal/plan"
	"cadence/internal/planstore"
	"cadence/internal/records"
	"cadence/internal/routine"
	"cadence/internal/trigger"
)

// Daemon coordinates reminders and plan sync, and enforces single-instance
// execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	cache      *cache.Store
	plans      *planstore.Store
	recorder   *records.Store
	library    *routine.Library
	capability notify.Capability
	scheduler  *trigger.Scheduler
	auth       identity.Watcher

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	userID    string
	stopAuth  func()
	stopWatch func()
	session   *engine.Session
}

// Deps bundles the daemon's collaborators.
type Deps struct {
	Cache      *cache.Store
	Plans      *planstore.Store
	Recorder   *records.Store
	Library    *routine.Library
	Capability notify.Capability
	Auth       identity.Watcher
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	UserID       string
	CacheDBPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || deps.Cache == nil || deps.Plans == nil || deps.Library == nil || deps.Capability == nil || deps.Auth == nil || logger == nil {
		return nil, errors.New("daemon requires config, cache, plan store, library, capability, auth watcher, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "cadenced.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "daemon"),
		cache:      deps.Cache,
		plans:      deps.Plans,
		recorder:   deps.Recorder,
		library:    deps.Library,
		capability: deps.Capability,
		scheduler:  trigger.New(deps.Capability, deps.Cache, logger),
		auth:       deps.Auth,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and begins following auth changes.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cadence daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.running.Store(true)

	stop := d.auth.OnAuthChanged(d.handleAuth)
	d.mu.Lock()
	d.stopAuth = stop
	d.mu.Unlock()

	d.logger.Info("cadence daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop tears down session state, cancels timers, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	stopAuth := d.stopAuth
	d.stopAuth = nil
	d.mu.Unlock()
	if stopAuth != nil {
		stopAuth()
	}
	d.teardown()

	if runtime, ok := d.capability.(*notify.Runtime); ok {
		runtime.Close()
	}
	d.plans.Flush()
	if d.recorder != nil {
		d.recorder.Flush()
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("cadence daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.cache != nil {
		return d.cache.Close()
	}
	return nil
}

// AttachSession registers an active run so a sign-out can end it.
func (d *Daemon) AttachSession(session *engine.Session) {
	d.mu.Lock()
	d.session = session
	d.mu.Unlock()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	userID := d.userID
	d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		UserID:       userID,
		CacheDBPath:  d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
	}
}

// TestNotification sends a test message using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := notify.NewSender(d.cfg).TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

func (d *Daemon) handleAuth(userID string) {
	if userID == "" {
		d.logger.Info("signed out; clearing session state",
			logging.String(logging.FieldEventType, "auth_signed_out"))
		d.teardown()
		return
	}
	d.signIn(userID)
}

func (d *Daemon) signIn(userID string) {
	d.teardown()

	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	weekly, err := d.plans.Load(ctx, userID)
	if err != nil {
		d.logger.Error("plan load failed",
			logging.String(logging.FieldUserID, userID),
			logging.Error(err),
		)
		return
	}
	d.resync(ctx, userID, weekly)

	stopWatch := d.plans.Subscribe(ctx, userID, func(updated *plan.WeeklyPlan) {
		d.logger.Info("remote plan changed; resyncing triggers",
			logging.String(logging.FieldUserID, userID),
			logging.String(logging.FieldEventType, "plan_changed"),
		)
		d.resync(context.Background(), userID, updated)
	})

	d.mu.Lock()
	d.userID = userID
	d.stopWatch = stopWatch
	d.mu.Unlock()
}

func (d *Daemon) resync(ctx context.Context, userID string, weekly *plan.WeeklyPlan) {
	result, err := d.scheduler.SyncAll(ctx, userID, weekly, d.library)
	if err != nil {
		d.logger.Error("trigger sync failed",
			logging.String(logging.FieldUserID, userID),
			logging.Error(err),
		)
		return
	}
	if result.PermissionDenied {
		d.logger.Warn("reminders disabled: notification permission denied",
			logging.String(logging.FieldUserID, userID),
		)
	}
}

// teardown clears per-user state: the plan subscription and any active run.
func (d *Daemon) teardown() {
	d.mu.Lock()
	stopWatch := d.stopWatch
	session := d.session
	d.stopWatch = nil
	d.session = nil
	d.userID = ""
	d.mu.Unlock()

	if stopWatch != nil {
		stopWatch()
	}
	if session != nil {
		session.Exit()
	}
}
