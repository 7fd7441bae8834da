package notify

import (
	"context"
	"time"
)

// Handle identifies a scheduled trigger. Opaque to callers.
type Handle string

// Content is the reminder payload shown to the user.
type Content struct {
	Title string
	Body  string
}

// Platform weekday numbering: 1=Sunday through 7=Saturday. This is the
// capability's own convention and deliberately differs from the plan's.
const (
	PlatformSunday   = 1
	PlatformSaturday = 7
)

// Capability is the notification surface the trigger scheduler drives.
type Capability interface {
	// RequestPermission reports whether reminders may be delivered at all.
	RequestPermission(ctx context.Context) bool
	// ScheduleRecurring registers a weekly trigger. weekday uses the
	// capability's own numbering (1=Sunday..7=Saturday).
	ScheduleRecurring(ctx context.Context, weekday, hour, minute int, content Content) (Handle, error)
	// Cancel revokes a trigger by handle. Unknown or already-fired handles
	// are a no-op, never an error.
	Cancel(ctx context.Context, handle Handle) error
}

// PlatformToTime converts the capability's weekday numbering to time.Weekday.
func PlatformToTime(weekday int) time.Weekday {
	return time.Weekday((weekday - 1) % 7)
}

// NextOccurrence computes the next local time matching (weekday, hour,
// minute) strictly after now. An occurrence earlier today counts as passed
// and yields the same slot next week.
func NextOccurrence(now time.Time, weekday, hour, minute int) time.Time {
	target := PlatformToTime(weekday)
	dayDiff := (int(target) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	candidate = candidate.AddDate(0, 0, dayDiff)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
