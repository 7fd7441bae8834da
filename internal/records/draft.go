package records

import (
	"time"

	"cadence/internal/cache"
)

// Draft statuses. Records never change status after append; a completed run
// appends a fresh final record instead of promoting its draft.
const (
	StatusDraft = "draft"
	StatusFinal = "final"
)

// CheckIn carries the user's self-assessment at the end of a routine.
type CheckIn struct {
	Mood         int  `json:"mood"`
	Focus        int  `json:"focus"`
	GoalAchieved bool `json:"goalAchieved"`
}

// Valid reports whether both scores sit in the 1..5 range.
func (c CheckIn) Valid() bool {
	return c.Mood >= 1 && c.Mood <= 5 && c.Focus >= 1 && c.Focus <= 5
}

// Draft is one appended session record.
type Draft struct {
	Status         string    `json:"status"`
	Title          string    `json:"title"`
	SetCount       int       `json:"setCount"`
	PlannedMinutes int       `json:"plannedMinutes"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	CompletedAt    time.Time `json:"completedAt"`
	CheckIn        *CheckIn  `json:"checkIn,omitempty"`
}

// Note is the day-scoped check-in note written alongside a final record.
type Note struct {
	Day          string `json:"day"`
	Title        string `json:"title"`
	Mood         int    `json:"mood"`
	Focus        int    `json:"focus"`
	GoalAchieved bool   `json:"goalAchieved"`
}

// NoteDay renders the logical day key used to scope check-in notes.
func NoteDay(t time.Time) string {
	return t.Format("2006-01-02")
}

func (d Draft) row(userID string) cache.DraftRow {
	row := cache.DraftRow{
		UserID:         userID,
		Status:         d.Status,
		Title:          d.Title,
		SetCount:       d.SetCount,
		PlannedMinutes: d.PlannedMinutes,
		ElapsedSeconds: d.ElapsedSeconds,
		CompletedAt:    d.CompletedAt,
	}
	if d.CheckIn != nil {
		row.HasCheckIn = true
		row.Mood = d.CheckIn.Mood
		row.Focus = d.CheckIn.Focus
		row.GoalAchieved = d.CheckIn.GoalAchieved
	}
	return row
}

func fromRow(row cache.DraftRow) Draft {
	draft := Draft{
		Status:         row.Status,
		Title:          row.Title,
		SetCount:       row.SetCount,
		PlannedMinutes: row.PlannedMinutes,
		ElapsedSeconds: row.ElapsedSeconds,
		CompletedAt:    row.CompletedAt,
	}
	if row.HasCheckIn {
		draft.CheckIn = &CheckIn{
			Mood:         row.Mood,
			Focus:        row.Focus,
			GoalAchieved: row.GoalAchieved,
		}
	}
	return draft
}
