// Package plan owns the weekly plan data model.
//
// A WeeklyPlan maps the plan's own weekday keys (1=Monday..7=Sunday) to
// ordered plan items. Plan item ids are unique across the whole plan, start
// times are "HH:MM" strings in local 24-hour time, and step overrides take
// precedence over the referenced routine template. The package also resolves
// "today" through the logical day boundary, under which the calendar day rolls
// over at a configurable hour instead of midnight.
package plan
