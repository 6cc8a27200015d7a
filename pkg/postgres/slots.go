package postgres

import (
	"context"
	"fmt"

	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// GetAvailableSlots retrieves the slots for a date that still have seats.
// Remaining capacity is derived from persisted assignments, so a re-run
// sees the effect of every placement already committed.
func (d *DB) GetAvailableSlots(ctx context.Context, date string) ([]db.Slot, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT s.id, s.slot_date::text, s.start_minute, s.capacity,
		       s.capacity - COUNT(a.id) AS remaining
		FROM tee_slot s
		LEFT JOIN assignment a ON a.slot_id = s.id
		WHERE s.slot_date = $1
		GROUP BY s.id, s.slot_date, s.start_minute, s.capacity
		HAVING s.capacity - COUNT(a.id) > 0
		ORDER BY s.start_minute
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query tee slots: %w", err)
	}
	defer rows.Close()

	var slots []db.Slot
	for rows.Next() {
		var s db.Slot
		if err := rows.Scan(&s.ID, &s.Date, &s.StartMinute, &s.Capacity, &s.Remaining); err != nil {
			return nil, fmt.Errorf("failed to scan tee slot: %w", err)
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tee slots: %w", err)
	}

	return slots, nil
}
