// Package trigger keeps the platform's recurring reminder triggers in step
// with the weekly plan.
//
// The notification capability is write-only: it hands back opaque handles and
// offers no way to enumerate what is registered. The scheduler therefore owns
// a planId-to-handles record in the local cache and reconciles by
// cancel-then-register, which makes SyncAll idempotent and safe to retry
// after partial failures. Weekday numbering differs between the plan
// (1=Monday..7=Sunday) and the capability (1=Sunday..7=Saturday); the fixed
// translation table lives here and nowhere else.
package trigger
