// Package docstore defines the remote document service contract and its
// implementations.
//
// The remote store is a per-user key-value document service with get, set,
// merge, and change-watch semantics. Cadence ships an HTTP client for a
// self-hosted document service, an in-memory implementation used by tests and
// by the daemon when sync is disabled, and the ErrUnavailable sentinel callers
// use to fall back to the local cache.
package docstore
