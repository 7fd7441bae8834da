package trigger_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cadence/internal/cache"
	"cadence/internal/logging"
	"cadence/internal/notify"
	"cadence/internal/plan"
	"cadence/internal/routine"
	"cadence/internal/trigger"
)

type scheduled struct {
	weekday int
	hour    int
	minute  int
	content notify.Content
}

// fakeCapability records registrations and cancellations in order.
type fakeCapability struct {
	permission bool
	failTitles map[string]bool

	mu     sync.Mutex
	serial int
	active map[notify.Handle]scheduled
	ops    []string
}

func newFakeCapability() *fakeCapability {
	return &fakeCapability{
		permission: true,
		active:     make(map[notify.Handle]scheduled),
	}
}

func (f *fakeCapability) RequestPermission(context.Context) bool { return f.permission }

func (f *fakeCapability) ScheduleRecurring(_ context.Context, weekday, hour, minute int, content notify.Content) (notify.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTitles[content.Title] {
		return "", errors.New("platform rejected trigger")
	}
	f.serial++
	handle := notify.Handle(fmt.Sprintf("h-%d", f.serial))
	f.active[handle] = scheduled{weekday: weekday, hour: hour, minute: minute, content: content}
	f.ops = append(f.ops, "register:"+content.Title)
	return handle, nil
}

func (f *fakeCapability) Cancel(_ context.Context, handle notify.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, handle)
	f.ops = append(f.ops, "cancel:"+string(handle))
	return nil
}

func (f *fakeCapability) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

func newCache(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "cadence.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testLibrary() *routine.Library {
	return routine.NewLibrary(
		routine.Template{
			ID:    "focus-block",
			Title: "Focus Block",
			Steps: []routine.Step{{Label: "Focus", DurationMinutes: 25}, {Label: "Rest", DurationMinutes: 5}},
		},
		routine.Template{
			ID:    "warmup",
			Title: "Morning Warmup",
			Steps: []routine.Step{{Label: "Stretch", DurationMinutes: 5}},
		},
	)
}

func scheduledItem(routineID, startAt string) plan.Item {
	item := plan.NewItem(routineID)
	item.StartAt = startAt
	return item
}

func testPlan(t *testing.T) *plan.WeeklyPlan {
	t.Helper()
	weekly := plan.NewWeeklyPlan()
	add := func(weekday plan.Weekday, item plan.Item) {
		t.Helper()
		if err := weekly.Add(weekday, item); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	add(plan.Monday, scheduledItem("warmup", "06:30"))
	add(plan.Wednesday, scheduledItem("focus-block", "09:00"))
	add(plan.Sunday, scheduledItem("focus-block", "19:45"))
	// Unscheduled and dangling items never become triggers.
	add(plan.Tuesday, plan.NewItem("warmup"))
	add(plan.Friday, scheduledItem("deleted-routine", "07:00"))
	return weekly
}

func TestWeekdayTranslationExhaustive(t *testing.T) {
	want := map[plan.Weekday]int{
		plan.Monday:    2,
		plan.Tuesday:   3,
		plan.Wednesday: 4,
		plan.Thursday:  5,
		plan.Friday:    6,
		plan.Saturday:  7,
		plan.Sunday:    1,
	}
	for _, weekday := range plan.Weekdays() {
		translated, ok := trigger.PlatformWeekday(weekday)
		if !ok {
			t.Fatalf("no translation for %v", weekday)
		}
		if translated != want[weekday] {
			t.Errorf("PlatformWeekday(%v) = %d, want %d", weekday, translated, want[weekday])
		}
	}
	if _, ok := trigger.PlatformWeekday(plan.Weekday(0)); ok {
		t.Error("out-of-range weekday must not translate")
	}
}

func TestSyncAllRegistersSchedulableItemsOnly(t *testing.T) {
	capability := newFakeCapability()
	local := newCache(t)
	scheduler := trigger.New(capability, local, logging.NewNop())
	ctx := context.Background()

	result, err := scheduler.SyncAll(ctx, "alice", testPlan(t), testLibrary())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.PermissionDenied {
		t.Fatal("permission unexpectedly denied")
	}
	if result.Registered != 3 {
		t.Fatalf("registered = %d, want 3", result.Registered)
	}
	if result.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2 (unscheduled + dangling)", result.Skipped)
	}
	if capability.activeCount() != 3 {
		t.Fatalf("platform holds %d triggers, want 3", capability.activeCount())
	}

	record, err := local.TriggerHandles(ctx, "alice")
	if err != nil {
		t.Fatalf("trigger record: %v", err)
	}
	if len(record) != 3 {
		t.Fatalf("record holds %d plan ids, want 3", len(record))
	}
}

func TestSyncAllIsIdempotent(t *testing.T) {
	capability := newFakeCapability()
	local := newCache(t)
	scheduler := trigger.New(capability, local, logging.NewNop())
	ctx := context.Background()
	weekly := testPlan(t)
	library := testLibrary()

	if _, err := scheduler.SyncAll(ctx, "alice", weekly, library); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	second, err := scheduler.SyncAll(ctx, "alice", weekly, library)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.Cancelled != 3 || second.Registered != 3 {
		t.Fatalf("second pass cancelled=%d registered=%d, want 3/3", second.Cancelled, second.Registered)
	}
	// No handle pile-up on the platform.
	if capability.activeCount() != 3 {
		t.Fatalf("platform holds %d triggers after resync, want 3", capability.activeCount())
	}
}

func TestSyncAllCancelsBeforeRegistering(t *testing.T) {
	capability := newFakeCapability()
	local := newCache(t)
	scheduler := trigger.New(capability, local, logging.NewNop())
	ctx := context.Background()
	weekly := testPlan(t)
	library := testLibrary()

	if _, err := scheduler.SyncAll(ctx, "alice", weekly, library); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	capability.mu.Lock()
	capability.ops = nil
	capability.mu.Unlock()

	if _, err := scheduler.SyncAll(ctx, "alice", weekly, library); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	capability.mu.Lock()
	defer capability.mu.Unlock()
	sawRegister := false
	for _, op := range capability.ops {
		if strings.HasPrefix(op, "register:") {
			sawRegister = true
		}
		if sawRegister && strings.HasPrefix(op, "cancel:") {
			t.Fatalf("cancel after register: %v", capability.ops)
		}
	}
}

func TestSyncAllPermissionDenied(t *testing.T) {
	capability := newFakeCapability()
	capability.permission = false
	local := newCache(t)
	scheduler := trigger.New(capability, local, logging.NewNop())

	result, err := scheduler.SyncAll(context.Background(), "alice", testPlan(t), testLibrary())
	if err != nil {
		t.Fatalf("denied permission must not be an error: %v", err)
	}
	if !result.PermissionDenied {
		t.Fatal("expected PermissionDenied result")
	}
	if result.Registered != 0 || capability.activeCount() != 0 {
		t.Fatal("no triggers may be registered without permission")
	}
}

func TestSyncAllToleratesRegistrationFailure(t *testing.T) {
	capability := newFakeCapability()
	capability.failTitles = map[string]bool{"Morning Warmup": true}
	local := newCache(t)
	scheduler := trigger.New(capability, local, logging.NewNop())
	ctx := context.Background()

	result, err := scheduler.SyncAll(ctx, "alice", testPlan(t), testLibrary())
	if err != nil {
		t.Fatalf("partial failure must not abort the pass: %v", err)
	}
	if result.Failed != 1 || result.Registered != 2 {
		t.Fatalf("failed=%d registered=%d, want 1/2", result.Failed, result.Registered)
	}
	record, err := local.TriggerHandles(ctx, "alice")
	if err != nil {
		t.Fatalf("trigger record: %v", err)
	}
	if len(record) != 2 {
		t.Fatalf("record holds %d plan ids, want only the successes", len(record))
	}
}

func TestRescheduleOneLeavesOthersAlone(t *testing.T) {
	capability := newFakeCapability()
	local := newCache(t)
	scheduler := trigger.New(capability, local, logging.NewNop())
	ctx := context.Background()
	library := testLibrary()

	weekly := plan.NewWeeklyPlan()
	first := scheduledItem("warmup", "06:30")
	second := scheduledItem("focus-block", "09:00")
	if err := weekly.Add(plan.Monday, first); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := weekly.Add(plan.Wednesday, second); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := scheduler.SyncAll(ctx, "alice", weekly, library); err != nil {
		t.Fatalf("sync: %v", err)
	}
	beforeOther, err := local.HandlesFor(ctx, "alice", second.PlanID)
	if err != nil || len(beforeOther) != 1 {
		t.Fatalf("second item handles = %v (%v)", beforeOther, err)
	}
	beforeFirst, _ := local.HandlesFor(ctx, "alice", first.PlanID)

	first.StartAt = "07:00"
	if err := scheduler.RescheduleOne(ctx, "alice", plan.Monday, first, library); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	afterFirst, _ := local.HandlesFor(ctx, "alice", first.PlanID)
	if len(afterFirst) != 1 || afterFirst[0] == beforeFirst[0] {
		t.Fatalf("expected a fresh handle for the rescheduled item, got %v", afterFirst)
	}
	afterOther, _ := local.HandlesFor(ctx, "alice", second.PlanID)
	if len(afterOther) != 1 || afterOther[0] != beforeOther[0] {
		t.Fatalf("other item's handle must be untouched: %v vs %v", afterOther, beforeOther)
	}
	if capability.activeCount() != 2 {
		t.Fatalf("platform holds %d triggers, want 2", capability.activeCount())
	}
}

func TestRescheduleOneClearsUnscheduledItem(t *testing.T) {
	capability := newFakeCapability()
	local := newCache(t)
	scheduler := trigger.New(capability, local, logging.NewNop())
	ctx := context.Background()
	library := testLibrary()

	weekly := plan.NewWeeklyPlan()
	item := scheduledItem("warmup", "06:30")
	if err := weekly.Add(plan.Monday, item); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := scheduler.SyncAll(ctx, "alice", weekly, library); err != nil {
		t.Fatalf("sync: %v", err)
	}

	item.StartAt = ""
	if err := scheduler.RescheduleOne(ctx, "alice", plan.Monday, item, library); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	handles, err := local.HandlesFor(ctx, "alice", item.PlanID)
	if err != nil {
		t.Fatalf("handles: %v", err)
	}
	if len(handles) != 0 || capability.activeCount() != 0 {
		t.Fatalf("unscheduled item must clear its trigger, handles=%v active=%d", handles, capability.activeCount())
	}
}

func TestElapsedThisWeek(t *testing.T) {
	// Wednesday 2026-02-04 10:00 local.
	now := time.Date(2026, time.February, 4, 10, 0, 0, 0, time.Local)
	cases := []struct {
		name    string
		weekday plan.Weekday
		startAt string
		want    bool
	}{
		{"earlier weekday", plan.Monday, "09:00", true},
		{"later weekday", plan.Friday, "09:00", false},
		{"today earlier", plan.Wednesday, "08:00", true},
		{"today exact", plan.Wednesday, "10:00", true},
		{"today later", plan.Wednesday, "18:00", false},
		{"unscheduled", plan.Monday, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := trigger.ElapsedThisWeek(now, tc.weekday, tc.startAt); got != tc.want {
				t.Fatalf("ElapsedThisWeek = %v, want %v", got, tc.want)
			}
		})
	}
}
