package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DraftRow is a persisted session record. Rows are append-only.
type DraftRow struct {
	ID             int64
	UserID         string
	Status         string
	Title          string
	SetCount       int
	PlannedMinutes int
	ElapsedSeconds int
	CompletedAt    time.Time
	Mood           int
	Focus          int
	GoalAchieved   bool
	HasCheckIn     bool
}

// AppendDraft inserts a session record and returns its row id.
func (s *Store) AppendDraft(ctx context.Context, row DraftRow) (int64, error) {
	if row.UserID == "" {
		return 0, errors.New("draft row has no user id")
	}
	completedAt := row.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	var mood, focus, goal any
	if row.HasCheckIn {
		mood = row.Mood
		focus = row.Focus
		goal = boolToInt(row.GoalAchieved)
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO draft_records (
            user_id, status, title, set_count, planned_minutes, elapsed_seconds,
            completed_at, mood, focus, goal_achieved, has_checkin
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.UserID,
		row.Status,
		row.Title,
		row.SetCount,
		row.PlannedMinutes,
		row.ElapsedSeconds,
		completedAt.UTC().Format(time.RFC3339Nano),
		mood,
		focus,
		goal,
		boolToInt(row.HasCheckIn),
	)
	if err != nil {
		return 0, fmt.Errorf("append draft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListDrafts returns a user's records oldest first.
func (s *Store) ListDrafts(ctx context.Context, userID string) ([]DraftRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, status, title, set_count, planned_minutes, elapsed_seconds,
                completed_at, mood, focus, goal_achieved, has_checkin
         FROM draft_records WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []DraftRow
	for rows.Next() {
		row, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, row)
	}
	return drafts, rows.Err()
}

func scanDraft(scanner interface{ Scan(dest ...any) error }) (DraftRow, error) {
	var (
		row          DraftRow
		completedRaw string
		mood         sql.NullInt64
		focus        sql.NullInt64
		goal         sql.NullInt64
		hasCheckIn   int
	)
	if err := scanner.Scan(
		&row.ID,
		&row.UserID,
		&row.Status,
		&row.Title,
		&row.SetCount,
		&row.PlannedMinutes,
		&row.ElapsedSeconds,
		&completedRaw,
		&mood,
		&focus,
		&goal,
		&hasCheckIn,
	); err != nil {
		return DraftRow{}, err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, completedRaw); err == nil {
		row.CompletedAt = parsed
	}
	row.HasCheckIn = hasCheckIn != 0
	if mood.Valid {
		row.Mood = int(mood.Int64)
	}
	if focus.Valid {
		row.Focus = int(focus.Int64)
	}
	if goal.Valid {
		row.GoalAchieved = goal.Int64 != 0
	}
	return row, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
