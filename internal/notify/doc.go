// Package notify implements the notification capability behind routine
// reminders.
//
// The Capability contract accepts a (weekday, hour, minute, content) recurring
// trigger and returns an opaque handle; it offers no query-by-content API, so
// callers track their own handles. The capability uses its own weekday
// numbering (1=Sunday..7=Saturday); translation from the plan's numbering is
// the trigger scheduler's job, never this package's.
//
// The ntfy-backed runtime keeps client-local timers: each trigger sleeps until
// its next occurrence, posts the reminder to the configured ntfy topic, and
// re-arms for the following week. A trigger whose time already passed this
// week arms for next week instead of firing immediately. When no topic is
// configured a noop capability is returned and scheduling silently no-ops.
package notify
