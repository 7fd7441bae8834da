// Package records persists session outcomes.
//
// A Draft is one append-only record of a run: a mid-session snapshot
// (status draft) or a completed routine with its check-in (status final).
// The recorder journals every draft to the local cache synchronously before
// pushing it to the remote document store best-effort, so a dead network
// never loses a record. Check-in notes are stored per logical day alongside
// the drafts.
package records
