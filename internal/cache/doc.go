// Package cache persists local state in SQLite.
//
// One database file holds three concerns: a per-user key-value table backing
// the plan cache (GetItem/SetItem string semantics, keys namespaced by user id
// so nothing leaks across sign-out/sign-in), the trigger-record table mapping
// plan item ids to live notification handles, and the append-only draft
// journal that keeps session records safe when the network is down.
//
// The database is a cache and journal, not an archive; the remote document
// store remains the authority for plans whenever it is reachable.
package cache
