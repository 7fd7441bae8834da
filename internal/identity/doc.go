// Package identity tells the daemon who is signed in.
//
// There is no ambient current-user singleton anywhere in the codebase; every
// store and scheduler call takes an explicit user id. This package only
// delivers auth changes: an empty user id means signed out, and subscribers
// react by tearing down sessions and in-memory state.
package identity
