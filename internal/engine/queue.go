package engine

import (
	"sort"

	"cadence/internal/plan"
	"cadence/internal/routine"
)

// Unscheduled marks a queue item with no start time. Unscheduled items sort
// after every scheduled one.
const Unscheduled = -1

// QueueItem is one runnable routine, derived fresh from the plan each time a
// session starts. It never mutates the plan item it came from.
type QueueItem struct {
	PlanID         string
	Title          string
	Steps          []routine.Step
	SetCount       int
	StartAtMinutes int
}

// PlannedMinutes is the full planned duration: sum of step minutes times the
// set count.
func (q QueueItem) PlannedMinutes() int {
	return routine.SumMinutes(q.Steps) * q.SetCount
}

// Scheduled reports whether the item has a start time.
func (q QueueItem) Scheduled() bool {
	return q.StartAtMinutes != Unscheduled
}

// BuildQueue materializes today's runnable items. Items whose steps resolve
// empty are dropped; the rest sort by start time ascending with unscheduled
// items last, ties keeping plan order.
func BuildQueue(weekly *plan.WeeklyPlan, library *routine.Library, today plan.Weekday) []QueueItem {
	var queue []QueueItem
	for _, item := range weekly.Day(today) {
		steps := item.ResolveSteps(library)
		if len(steps) == 0 {
			continue
		}
		start := Unscheduled
		if minutes, ok := item.StartMinutes(); ok {
			start = minutes
		}
		queue = append(queue, QueueItem{
			PlanID:         item.PlanID,
			Title:          item.ResolveTitle(library),
			Steps:          steps,
			SetCount:       item.Sets(),
			StartAtMinutes: start,
		})
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return sortKey(queue[i]) < sortKey(queue[j])
	})
	return queue
}

// SingleQueue builds a one-item queue straight from a template, bypassing
// the weekly plan. Used for ad hoc runs.
func SingleQueue(template routine.Template, setCount int) []QueueItem {
	if setCount <= 0 {
		setCount = 1
	}
	if len(template.Steps) == 0 {
		return nil
	}
	return []QueueItem{{
		PlanID:         template.ID,
		Title:          template.Title,
		Steps:          template.Steps,
		SetCount:       setCount,
		StartAtMinutes: Unscheduled,
	}}
}

func sortKey(item QueueItem) int {
	if !item.Scheduled() {
		return 24 * 60
	}
	return item.StartAtMinutes
}
