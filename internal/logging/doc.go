// Package logging assembles the structured slog loggers used across Cadence.
//
// It owns the console and JSON handlers, centralizes level parsing and output
// plumbing, and defines the standardized attribute keys (component, user_id,
// plan_id, ...) so every subsystem emits log lines with the same shape. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
