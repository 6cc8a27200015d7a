package postgres

import (
	"context"
	"fmt"

	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// GetPendingRequests retrieves all PENDING lottery requests for a date
func (d *DB) GetPendingRequests(ctx context.Context, date string) ([]db.Request, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, request_date::text, organizer_id, member_ids, preferred_window,
		       alternate_window, submitted_at, status, assigned_slot_id
		FROM lottery_request
		WHERE request_date = $1 AND status = 'PENDING'
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query lottery requests: %w", err)
	}
	defer rows.Close()

	var requests []db.Request
	for rows.Next() {
		var r db.Request
		var alternate, assignedSlot *string
		if err := rows.Scan(&r.ID, &r.Date, &r.OrganizerID, &r.MemberIDs, &r.PreferredWindow,
			&alternate, &r.SubmittedAt, &r.Status, &assignedSlot); err != nil {
			return nil, fmt.Errorf("failed to scan lottery request: %w", err)
		}
		if alternate != nil {
			r.AlternateWindow = *alternate
		}
		if assignedSlot != nil {
			r.AssignedSlotID = *assignedSlot
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lottery requests: %w", err)
	}

	return requests, nil
}

// UpdateRequestStatus transitions a request's lifecycle status and records
// the assigned slot, if any.
func (d *DB) UpdateRequestStatus(ctx context.Context, requestID, status, assignedSlotID string) error {
	var slotID *string
	if assignedSlotID != "" {
		slotID = &assignedSlotID
	}

	_, err := d.pool.Exec(ctx, `
		UPDATE lottery_request
		SET status = $2, assigned_slot_id = $3
		WHERE id = $1
	`, requestID, status, slotID)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return nil
}
