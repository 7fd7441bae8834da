package plan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cadence/internal/routine"
)

// Item is one scheduled occurrence of a routine within a weekday's list.
//
// RoutineID is a weak reference into the routine library; it may dangle if the
// template was removed. StepsOverride, when present, wins over the template's
// steps. An empty StartAt means unscheduled; unscheduled items sort last.
type Item struct {
	PlanID        string         `json:"planId"`
	RoutineID     string         `json:"routineId,omitempty"`
	TitleOverride string         `json:"titleOverride,omitempty"`
	StepsOverride []routine.Step `json:"stepsOverride,omitempty"`
	TagsOverride  []string       `json:"tagsOverride,omitempty"`
	StartAt       string         `json:"startAt,omitempty"`
	SetCount      int            `json:"setCount,omitempty"`
}

// NewItem mints an item referencing a routine template.
func NewItem(routineID string) Item {
	return Item{
		PlanID:    uuid.NewString(),
		RoutineID: strings.TrimSpace(routineID),
		SetCount:  1,
	}
}

// Sets returns the effective set count, treating unset values as one pass.
func (i Item) Sets() int {
	if i.SetCount <= 0 {
		return 1
	}
	return i.SetCount
}

// ResolveSteps returns the effective step list: the override when present,
// else the referenced template's steps, else nothing. A dangling RoutineID
// resolves to an empty list so the item becomes inert instead of failing.
func (i Item) ResolveSteps(library *routine.Library) []routine.Step {
	if len(i.StepsOverride) > 0 {
		return i.StepsOverride
	}
	if tpl, ok := library.Resolve(i.RoutineID); ok {
		return tpl.Steps
	}
	return nil
}

// ResolveTitle returns the display title: the override, the template title,
// or a derived title from the routine id when both are missing.
func (i Item) ResolveTitle(library *routine.Library) string {
	if title := strings.TrimSpace(i.TitleOverride); title != "" {
		return title
	}
	if tpl, ok := library.Resolve(i.RoutineID); ok && strings.TrimSpace(tpl.Title) != "" {
		return tpl.Title
	}
	return deriveTitle(i.RoutineID)
}

// ResolveTags returns the effective tags.
func (i Item) ResolveTags(library *routine.Library) []string {
	if len(i.TagsOverride) > 0 {
		return i.TagsOverride
	}
	if tpl, ok := library.Resolve(i.RoutineID); ok {
		return tpl.Tags
	}
	return nil
}

// Inert reports whether the item contributes neither timer nor trigger: both
// the override and the template resolved to an empty step list.
func (i Item) Inert(library *routine.Library) bool {
	return len(i.ResolveSteps(library)) == 0
}

// StartMinutes parses StartAt into minutes of day. The boolean is false for
// unscheduled items.
func (i Item) StartMinutes() (int, bool) {
	return ParseStartAt(i.StartAt)
}

// ParseStartAt converts an "HH:MM" local time into minutes of day [0,1440).
func ParseStartAt(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	var hour, minute int
	if _, err := fmt.Sscanf(trimmed, "%d:%d", &hour, &minute); err != nil {
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// FormatStartAt renders minutes of day back into "HH:MM".
func FormatStartAt(minutes int) string {
	if minutes < 0 || minutes >= 24*60 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

var titleCaser = cases.Title(language.Und)

func deriveTitle(routineID string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(routineID)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "Untitled Routine"
	}
	return titleCaser.String(cleaned)
}
