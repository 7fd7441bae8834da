// Package engine runs guided routine sessions.
//
// A session materializes today's plan items into a run queue, then drives a
// countdown state machine over steps and sets. The transition logic is a pure
// function over (state, event, item) so every path is testable without
// wall-clock waits; the Session driver owns the single one-second timer and
// is the only caller of the transition. Progress checkpoints leave the engine
// as appended draft records, never as mutations of the plan: a crash mid-run
// costs at most one in-progress draft.
package engine
