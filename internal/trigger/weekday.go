package trigger

import "cadence/internal/plan"

// platformWeekday translates plan weekday numbering (1=Monday..7=Sunday) to
// the capability's numbering (1=Sunday..7=Saturday).
var platformWeekday = map[plan.Weekday]int{
	plan.Monday:    2,
	plan.Tuesday:   3,
	plan.Wednesday: 4,
	plan.Thursday:  5,
	plan.Friday:    6,
	plan.Saturday:  7,
	plan.Sunday:    1,
}

// PlatformWeekday returns the capability weekday for a plan weekday. The
// boolean is false for out-of-range input.
func PlatformWeekday(weekday plan.Weekday) (int, bool) {
	translated, ok := platformWeekday[weekday]
	return translated, ok
}
