// Package daemon wires the long-running reminder service.
//
// One daemon instance runs per machine, enforced with a lock file. It follows
// auth changes: a sign-in loads the user's plan, registers all reminder
// triggers, and subscribes to remote plan edits so triggers stay current; a
// sign-out tears the session state down again. Shutdown cancels every armed
// timer and flushes pending remote writes.
package daemon
