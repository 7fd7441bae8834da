// Package routine provides the read-only catalog of routine templates.
//
// A Library merges the user-authored routines.toml with the embedded built-in
// catalog; on id collision the user entry wins. Templates are immutable once
// referenced by a plan item, and resolution of a missing template is an
// explicit miss rather than an error so dangling references stay inert.
package routine
