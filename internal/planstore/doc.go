// Package planstore reconciles the weekly plan between the local cache and
// the remote document store.
//
// The remote document, when present, is authoritative and overwrites the
// cache on load; an absent remote with a non-empty cache is repaired by
// pushing the cache up. Saves write the cache synchronously and push the
// remote asynchronously best-effort, so a flaky network never blocks editing.
// Change subscriptions replace the in-memory plan wholesale on every remote
// edit (document-level last-writer-wins); an echo of a local write is
// tolerated because the content is identical, and a slower external edit
// arriving after a local edit will overwrite it.
package planstore
