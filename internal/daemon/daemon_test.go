package daemon_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"cadence/internal/cache"
	"cadence/internal/config"
	"cadence/internal/daemon"
	"cadence/internal/docstore"
	"cadence/internal/identity"
	"cadence/internal/logging"
	"cadence/internal/notify"
	"cadence/internal/plan"
	"cadence/internal/planstore"
	"cadence/internal/routine"
)

type grantingCapability struct {
	registered int
	cancelled  int
}

func (g *grantingCapability) RequestPermission(context.Context) bool { return true }

func (g *grantingCapability) ScheduleRecurring(_ context.Context, weekday, hour, minute int, _ notify.Content) (notify.Handle, error) {
	g.registered++
	return notify.Handle(string(rune('a' + g.registered))), nil
}

func (g *grantingCapability) Cancel(context.Context, notify.Handle) error {
	g.cancelled++
	return nil
}

func newDaemon(t *testing.T, remote docstore.Store, capability notify.Capability, auth identity.Watcher) *daemon.Daemon {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = dir
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	local, err := cache.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	library := routine.NewLibrary(routine.Template{
		ID:    "warmup",
		Title: "Morning Warmup",
		Steps: []routine.Step{{Label: "Stretch", DurationMinutes: 5}},
	})

	d, err := daemon.New(&cfg, daemon.Deps{
		Cache:      local,
		Plans:      planstore.New(local, remote, logging.NewNop()),
		Library:    library,
		Capability: capability,
		Auth:       auth,
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func seedRemotePlan(t *testing.T, remote docstore.Store, userID string) *plan.WeeklyPlan {
	t.Helper()
	weekly := plan.NewWeeklyPlan()
	item := plan.NewItem("warmup")
	item.StartAt = "06:30"
	if err := weekly.Add(plan.Monday, item); err != nil {
		t.Fatalf("add item: %v", err)
	}
	data, _ := json.Marshal(weekly)
	if err := remote.Set(context.Background(), planstore.RemotePath(userID), data, false); err != nil {
		t.Fatalf("seed remote: %v", err)
	}
	return weekly
}

func TestDaemonSyncsTriggersOnSignIn(t *testing.T) {
	remote := docstore.NewMemory()
	seedRemotePlan(t, remote, "alice")
	capability := &grantingCapability{}
	auth := identity.NewManual()
	d := newDaemon(t, remote, capability, auth)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	auth.Set("alice")

	if capability.registered != 1 {
		t.Fatalf("registered = %d, want 1", capability.registered)
	}
	status := d.Status()
	if !status.Running || status.UserID != "alice" {
		t.Fatalf("status = %+v", status)
	}

	auth.Set("")
	if d.Status().UserID != "" {
		t.Fatal("sign-out must clear the user")
	}
	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon still reports running after stop")
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	remote := docstore.NewMemory()
	auth := identity.NewStatic("")
	d := newDaemon(t, remote, &grantingCapability{}, auth)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second start must fail while running")
	}
	d.Stop()
}

func TestDaemonResyncsOnRemotePlanChange(t *testing.T) {
	remote := docstore.NewMemory()
	weekly := seedRemotePlan(t, remote, "alice")
	capability := &grantingCapability{}
	auth := identity.NewStatic("alice")
	d := newDaemon(t, remote, capability, auth)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if capability.registered != 1 {
		t.Fatalf("initial sync registered = %d, want 1", capability.registered)
	}

	// A remote edit adds a second scheduled item; the watcher resyncs.
	item := plan.NewItem("warmup")
	item.StartAt = "19:00"
	if err := weekly.Add(plan.Friday, item); err != nil {
		t.Fatalf("add item: %v", err)
	}
	data, _ := json.Marshal(weekly)
	if err := remote.Set(context.Background(), planstore.RemotePath("alice"), data, false); err != nil {
		t.Fatalf("remote edit: %v", err)
	}

	if capability.registered != 3 {
		t.Fatalf("after resync registered = %d, want 3 (1 initial + 2 replacements)", capability.registered)
	}
	if capability.cancelled != 1 {
		t.Fatalf("after resync cancelled = %d, want the initial handle cancelled", capability.cancelled)
	}
	d.Stop()
}
