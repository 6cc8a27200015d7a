package postgres

import (
	"context"
	"fmt"

	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// GetAssignments retrieves all assignment records for a date
func (d *DB) GetAssignments(ctx context.Context, date string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, request_id, slot_id, assignment_date::text, member_id,
		       start_minute, policy_fallback
		FROM assignment
		WHERE assignment_date = $1
		ORDER BY start_minute
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.ID, &a.RequestID, &a.SlotID, &a.Date, &a.MemberID,
			&a.StartMinute, &a.PolicyFallback); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// InsertAssignments inserts the assignment rows for one placed request in
// a single transaction, so a group is either fully recorded or not at all.
func (d *DB) InsertAssignments(ctx context.Context, assignments []db.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO assignment
				(id, request_id, slot_id, assignment_date, member_id,
				 start_minute, policy_fallback)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.ID, a.RequestID, a.SlotID, a.Date, a.MemberID, a.StartMinute, a.PolicyFallback)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
