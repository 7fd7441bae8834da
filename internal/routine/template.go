package routine

import "strings"

// Step is a single timed segment of a routine.
type Step struct {
	Label           string `toml:"label" json:"label"`
	DurationMinutes int    `toml:"duration_minutes" json:"durationMinutes"`
}

// Template is a reusable step sequence a plan item points to.
type Template struct {
	ID    string   `toml:"id" json:"id"`
	Title string   `toml:"title" json:"title"`
	Steps []Step   `toml:"steps" json:"steps"`
	Tags  []string `toml:"tags" json:"tags,omitempty"`
}

// TotalMinutes sums the step durations for one pass through the template.
func (t Template) TotalMinutes() int {
	return SumMinutes(t.Steps)
}

// SumMinutes totals the duration of a step sequence. Zero-duration steps are
// permitted and contribute nothing.
func SumMinutes(steps []Step) int {
	total := 0
	for _, step := range steps {
		if step.DurationMinutes > 0 {
			total += step.DurationMinutes
		}
	}
	return total
}

// Valid reports whether the template can be scheduled at all.
func (t Template) Valid() bool {
	return strings.TrimSpace(t.ID) != "" && len(t.Steps) > 0
}
