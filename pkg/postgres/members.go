package postgres

import (
	"context"
	"fmt"

	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// GetMembers retrieves all member records
func (d *DB) GetMembers(ctx context.Context) ([]db.Member, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, first_name, last_name, member_class, active
		FROM member
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []db.Member
	for rows.Next() {
		var m db.Member
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Class, &m.Active); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// GetSpeedProfiles retrieves all pace-of-play profiles
func (d *DB) GetSpeedProfiles(ctx context.Context) ([]db.SpeedProfile, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT member_id, tier, admin_adjustment
		FROM speed_profile
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query speed profiles: %w", err)
	}
	defer rows.Close()

	var profiles []db.SpeedProfile
	for rows.Next() {
		var p db.SpeedProfile
		if err := rows.Scan(&p.MemberID, &p.Tier, &p.AdminAdjustment); err != nil {
			return nil, fmt.Errorf("failed to scan speed profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating speed profiles: %w", err)
	}

	return profiles, nil
}
