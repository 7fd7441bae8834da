package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cadence/internal/config"
	"cadence/internal/logging"
)

// Runtime is a client-local trigger capability: every scheduled trigger owns
// a timer goroutine that fires on its weekly slot and re-arms. Triggers do
// not survive a process restart; the scheduler re-registers them on startup.
type Runtime struct {
	sender Sender
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	triggers map[Handle]*trigger
}

type trigger struct {
	weekday int
	hour    int
	minute  int
	content Content
	stop    chan struct{}
	done    chan struct{}
}

// NewRuntime builds a trigger runtime delivering through the given sender.
func NewRuntime(sender Sender, logger *slog.Logger) *Runtime {
	return &Runtime{
		sender:   sender,
		logger:   logging.WithComponent(logger, "notify"),
		now:      time.Now,
		triggers: make(map[Handle]*trigger),
	}
}

// NewCapability builds the configured notification capability. Without an
// ntfy topic the noop capability is returned and permission is denied.
func NewCapability(cfg *config.Config, logger *slog.Logger) Capability {
	if !cfg.Notifications.Reminders {
		return Noop{}
	}
	sender := NewSender(cfg)
	if _, ok := sender.(noopSender); ok {
		return Noop{}
	}
	return NewRuntime(sender, logger)
}

// RequestPermission reports true: a configured runtime can always deliver.
func (r *Runtime) RequestPermission(ctx context.Context) bool {
	return true
}

// ScheduleRecurring arms a weekly trigger and returns its handle.
func (r *Runtime) ScheduleRecurring(ctx context.Context, weekday, hour, minute int, content Content) (Handle, error) {
	if weekday < PlatformSunday || weekday > PlatformSaturday {
		return "", fmt.Errorf("schedule trigger: weekday %d out of range", weekday)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("schedule trigger: time %02d:%02d out of range", hour, minute)
	}

	handle := Handle(uuid.NewString())
	t := &trigger{
		weekday: weekday,
		hour:    hour,
		minute:  minute,
		content: content,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	r.triggers[handle] = t
	r.mu.Unlock()

	go r.run(handle, t)
	return handle, nil
}

// Cancel disarms a trigger. Unknown handles are a no-op.
func (r *Runtime) Cancel(ctx context.Context, handle Handle) error {
	r.mu.Lock()
	t, ok := r.triggers[handle]
	if ok {
		delete(r.triggers, handle)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	close(t.stop)
	<-t.done
	return nil
}

// Close disarms every trigger. Used at daemon shutdown.
func (r *Runtime) Close() {
	r.mu.Lock()
	triggers := r.triggers
	r.triggers = make(map[Handle]*trigger)
	r.mu.Unlock()
	for _, t := range triggers {
		close(t.stop)
		<-t.done
	}
}

// Len reports the number of armed triggers.
func (r *Runtime) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.triggers)
}

func (r *Runtime) run(handle Handle, t *trigger) {
	defer close(t.done)
	for {
		next := NextOccurrence(r.now(), t.weekday, t.hour, t.minute)
		timer := time.NewTimer(next.Sub(r.now()))
		select {
		case <-timer.C:
			r.deliver(handle, t)
		case <-t.stop:
			timer.Stop()
			return
		}
	}
}

func (r *Runtime) deliver(handle Handle, t *trigger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.sender.Send(ctx, t.content); err != nil {
		// Delivery failure never disarms the trigger; next week retries.
		r.logger.Warn("reminder delivery failed",
			logging.String("handle", string(handle)),
			logging.Int(logging.FieldWeekday, t.weekday),
			logging.Error(err),
			logging.String(logging.FieldEventType, "reminder_delivery_failed"),
		)
		return
	}
	r.logger.Info("reminder delivered",
		logging.String("handle", string(handle)),
		logging.Int(logging.FieldWeekday, t.weekday),
		logging.String(logging.FieldEventType, "reminder_delivered"),
	)
}

// Noop denies permission and ignores scheduling. Used when reminders are
// disabled or no delivery topic is configured.
type Noop struct{}

func (Noop) RequestPermission(context.Context) bool { return false }

func (Noop) ScheduleRecurring(_ context.Context, _, _, _ int, _ Content) (Handle, error) {
	return "", nil
}

func (Noop) Cancel(context.Context, Handle) error { return nil }
