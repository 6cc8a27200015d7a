package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// GetFairnessRecords retrieves all fairness records for a tracking period
func (d *DB) GetFairnessRecords(ctx context.Context, period string) ([]db.FairnessRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT member_id, period, total_entries, preferences_granted,
		       fulfillment_rate, miss_streak, fairness_score
		FROM fairness_record
		WHERE period = $1
	`, period)
	if err != nil {
		return nil, fmt.Errorf("failed to query fairness records: %w", err)
	}
	defer rows.Close()

	var records []db.FairnessRecord
	for rows.Next() {
		var r db.FairnessRecord
		if err := rows.Scan(&r.MemberID, &r.Period, &r.TotalEntries, &r.PreferencesGranted,
			&r.FulfillmentRate, &r.MissStreak, &r.FairnessScore); err != nil {
			return nil, fmt.Errorf("failed to scan fairness record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fairness records: %w", err)
	}

	return records, nil
}

// UpsertFairnessRecord writes a member's fairness record for a period,
// creating it on first update. Records are never deleted within a period.
func (d *DB) UpsertFairnessRecord(ctx context.Context, record db.FairnessRecord) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO fairness_record
			(member_id, period, total_entries, preferences_granted,
			 fulfillment_rate, miss_streak, fairness_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (member_id, period) DO UPDATE SET
			total_entries = EXCLUDED.total_entries,
			preferences_granted = EXCLUDED.preferences_granted,
			fulfillment_rate = EXCLUDED.fulfillment_rate,
			miss_streak = EXCLUDED.miss_streak,
			fairness_score = EXCLUDED.fairness_score
	`, record.MemberID, record.Period, record.TotalEntries, record.PreferencesGranted,
		record.FulfillmentRate, record.MissStreak, record.FairnessScore)
	if err != nil {
		return fmt.Errorf("failed to upsert fairness record: %w", err)
	}
	return nil
}

// GetRecentBookings retrieves confirmed bookings inside the longest
// rolling window any frequency rule needs, ending at the given date.
func (d *DB) GetRecentBookings(ctx context.Context, before time.Time, periodDays int) ([]db.Booking, error) {
	from := before.AddDate(0, 0, -periodDays)

	rows, err := d.pool.Query(ctx, `
		SELECT member_id, booking_date
		FROM booking
		WHERE booking_date > $1 AND booking_date <= $2
	`, from, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.MemberID, &b.Date); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}
