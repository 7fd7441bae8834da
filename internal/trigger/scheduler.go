package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cadence/internal/cache"
	"cadence/internal/logging"
	"cadence/internal/notify"
	"cadence/internal/plan"
	"cadence/internal/routine"
)

// Result summarizes one reconciliation pass.
type Result struct {
	PermissionDenied bool
	Cancelled        int
	Registered       int
	Skipped          int
	Failed           int
}

// Scheduler reconciles the weekly plan against the notification capability.
type Scheduler struct {
	capability notify.Capability
	cache      *cache.Store
	logger     *slog.Logger
}

// New builds a trigger scheduler.
func New(capability notify.Capability, cacheStore *cache.Store, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		capability: capability,
		cache:      cacheStore,
		logger:     logging.WithComponent(logger, "trigger"),
	}
}

// SyncAll replaces every trigger for the user with a fresh registration from
// the given plan. Permission denial is a result, not an error. Individual
// registration failures are logged and skipped; the pass still persists
// whatever it managed to register, and a retry converges.
func (s *Scheduler) SyncAll(ctx context.Context, userID string, weekly *plan.WeeklyPlan, library *routine.Library) (Result, error) {
	var result Result
	if !s.capability.RequestPermission(ctx) {
		result.PermissionDenied = true
		s.logger.Info("notification permission denied; no triggers registered",
			logging.String(logging.FieldUserID, userID),
			logging.String(logging.FieldEventType, "trigger_permission_denied"),
		)
		return result, nil
	}

	record, err := s.cache.TriggerHandles(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("read trigger record: %w", err)
	}
	for planID, handles := range record {
		for _, handle := range handles {
			if err := s.capability.Cancel(ctx, notify.Handle(handle)); err != nil {
				// Stale handles cancel as no-ops; a real failure is only
				// worth a log line because registration replaces it anyway.
				s.logger.Warn("trigger cancel failed",
					logging.String(logging.FieldUserID, userID),
					logging.String(logging.FieldPlanID, planID),
					logging.Error(err),
				)
				continue
			}
			result.Cancelled++
		}
	}

	fresh := make(map[string][]string)
	for _, weekday := range plan.Weekdays() {
		for _, item := range weekly.Day(weekday) {
			handle, ok := s.register(ctx, userID, weekday, item, library, &result)
			if ok {
				fresh[item.PlanID] = append(fresh[item.PlanID], string(handle))
			}
		}
	}

	if err := s.cache.ReplaceTriggerHandles(ctx, userID, fresh); err != nil {
		return result, fmt.Errorf("persist trigger record: %w", err)
	}
	s.logger.Info("trigger sync complete",
		logging.String(logging.FieldUserID, userID),
		logging.Int("registered", result.Registered),
		logging.Int("cancelled", result.Cancelled),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed),
		logging.String(logging.FieldEventType, "trigger_sync_complete"),
	)
	return result, nil
}

// RescheduleOne re-registers the triggers for a single plan item, leaving the
// rest of the record untouched. An unscheduled or inert item simply clears
// its entry.
func (s *Scheduler) RescheduleOne(ctx context.Context, userID string, weekday plan.Weekday, item plan.Item, library *routine.Library) error {
	if !s.capability.RequestPermission(ctx) {
		return nil
	}

	existing, err := s.cache.HandlesFor(ctx, userID, item.PlanID)
	if err != nil {
		return fmt.Errorf("read trigger handles: %w", err)
	}
	for _, handle := range existing {
		if err := s.capability.Cancel(ctx, notify.Handle(handle)); err != nil {
			s.logger.Warn("trigger cancel failed",
				logging.String(logging.FieldUserID, userID),
				logging.String(logging.FieldPlanID, item.PlanID),
				logging.Error(err),
			)
		}
	}

	var result Result
	handle, ok := s.register(ctx, userID, weekday, item, library, &result)
	if !ok {
		return s.cache.SetTriggerHandles(ctx, userID, item.PlanID, nil)
	}
	return s.cache.SetTriggerHandles(ctx, userID, item.PlanID, []string{string(handle)})
}

func (s *Scheduler) register(ctx context.Context, userID string, weekday plan.Weekday, item plan.Item, library *routine.Library, result *Result) (notify.Handle, bool) {
	startMinutes, scheduled := item.StartMinutes()
	if !scheduled || item.Inert(library) {
		result.Skipped++
		return "", false
	}
	translated, ok := PlatformWeekday(weekday)
	if !ok {
		result.Skipped++
		return "", false
	}

	title := item.ResolveTitle(library)
	content := notify.Content{
		Title: title,
		Body:  fmt.Sprintf("Time for %s", title),
	}
	handle, err := s.capability.ScheduleRecurring(ctx, translated, startMinutes/60, startMinutes%60, content)
	if err != nil {
		result.Failed++
		s.logger.Warn("trigger registration failed",
			logging.String(logging.FieldUserID, userID),
			logging.String(logging.FieldPlanID, item.PlanID),
			logging.Int(logging.FieldWeekday, int(weekday)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "trigger_register_failed"),
		)
		return "", false
	}
	if handle == "" {
		result.Skipped++
		return "", false
	}
	result.Registered++
	return handle, true
}

// ElapsedThisWeek reports whether the weekly slot for (weekday, startAt)
// already passed in the current plan week. Diagnostics only: a trigger
// registered for an elapsed slot arms for next week rather than firing
// immediately.
func ElapsedThisWeek(now time.Time, weekday plan.Weekday, startAt string) bool {
	startMinutes, ok := plan.ParseStartAt(startAt)
	if !ok {
		return false
	}
	today := plan.FromTime(now.Weekday())
	if weekday != today {
		return weekday < today
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	return startMinutes <= nowMinutes
}
