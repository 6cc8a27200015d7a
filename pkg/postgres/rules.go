package postgres

import (
	"context"
	"fmt"

	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// GetActiveRules retrieves all active eligibility rules whose date range
// (if any) covers the given date. Rules without a range always apply.
func (d *DB) GetActiveRules(ctx context.Context, date string) ([]db.Rule, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, category, member_class, start_minute, end_minute,
		       day_rrule, date_from, date_to, max_count, period_days,
		       overridable, priority, active
		FROM eligibility_rule
		WHERE active
		  AND (date_from IS NULL OR date_from <= $1)
		  AND (date_to IS NULL OR date_to >= $1)
		ORDER BY priority
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligibility rules: %w", err)
	}
	defer rows.Close()

	var rules []db.Rule
	for rows.Next() {
		var r db.Rule
		var memberClass, dayRRule *string
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &memberClass, &r.StartMinute, &r.EndMinute,
			&dayRRule, &r.DateFrom, &r.DateTo, &r.MaxCount, &r.PeriodDays,
			&r.Overridable, &r.Priority, &r.Active); err != nil {
			return nil, fmt.Errorf("failed to scan eligibility rule: %w", err)
		}
		if memberClass != nil {
			r.MemberClass = *memberClass
		}
		if dayRRule != nil {
			r.DayRRule = *dayRRule
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating eligibility rules: %w", err)
	}

	return rules, nil
}
