package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TriggerHandles reads the planId to handle-set mapping for a user.
func (s *Store) TriggerHandles(ctx context.Context, userID string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT plan_id, handles_json FROM trigger_records WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query trigger records: %w", err)
	}
	defer rows.Close()

	record := make(map[string][]string)
	for rows.Next() {
		var planID, handlesJSON string
		if err := rows.Scan(&planID, &handlesJSON); err != nil {
			return nil, err
		}
		var handles []string
		if err := json.Unmarshal([]byte(handlesJSON), &handles); err != nil {
			// A corrupt row loses its handles; the next sync re-registers.
			continue
		}
		record[planID] = handles
	}
	return record, rows.Err()
}

// HandlesFor reads the live handle set for one plan item.
func (s *Store) HandlesFor(ctx context.Context, userID, planID string) ([]string, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT handles_json FROM trigger_records WHERE user_id = ? AND plan_id = ?`,
		userID,
		planID,
	)
	var handlesJSON string
	if err := row.Scan(&handlesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trigger handles: %w", err)
	}
	var handles []string
	if err := json.Unmarshal([]byte(handlesJSON), &handles); err != nil {
		return nil, nil
	}
	return handles, nil
}

// ReplaceTriggerHandles swaps the entire trigger record for a user in one
// transaction, so a crash mid-sync never leaves a mixed mapping.
func (s *Store) ReplaceTriggerHandles(ctx context.Context, userID string, record map[string][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trigger replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trigger_records WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear trigger records: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for planID, handles := range record {
		if len(handles) == 0 {
			continue
		}
		handlesJSON, err := json.Marshal(handles)
		if err != nil {
			return fmt.Errorf("marshal handles: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO trigger_records (user_id, plan_id, handles_json, updated_at) VALUES (?, ?, ?, ?)`,
			userID,
			planID,
			string(handlesJSON),
			now,
		); err != nil {
			return fmt.Errorf("insert trigger record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trigger replace: %w", err)
	}
	return nil
}

// SetTriggerHandles replaces the handle set for a single plan item.
func (s *Store) SetTriggerHandles(ctx context.Context, userID, planID string, handles []string) error {
	if len(handles) == 0 {
		if _, err := s.db.ExecContext(
			ctx,
			`DELETE FROM trigger_records WHERE user_id = ? AND plan_id = ?`,
			userID,
			planID,
		); err != nil {
			return fmt.Errorf("delete trigger record: %w", err)
		}
		return nil
	}

	handlesJSON, err := json.Marshal(handles)
	if err != nil {
		return fmt.Errorf("marshal handles: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO trigger_records (user_id, plan_id, handles_json, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(user_id, plan_id) DO UPDATE SET handles_json = excluded.handles_json, updated_at = excluded.updated_at`,
		userID,
		planID,
		string(handlesJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set trigger record: %w", err)
	}
	return nil
}
