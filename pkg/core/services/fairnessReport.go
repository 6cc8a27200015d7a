package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// FairnessReportRow represents one member's fairness state for display
type FairnessReportRow struct {
	MemberID           string
	MemberName         string
	TotalEntries       int
	PreferencesGranted int
	FulfillmentRate    float64
	MissStreak         int
	FairnessScore      float64
}

// FairnessReportResult contains the report data for display
type FairnessReportResult struct {
	Period string
	Rows   []FairnessReportRow
}

// FairnessReportStore defines the database operations needed for the report
type FairnessReportStore interface {
	GetFairnessRecords(ctx context.Context, period string) ([]db.FairnessRecord, error)
	GetMembers(ctx context.Context) ([]db.Member, error)
}

// FairnessReport builds a per-member fairness summary for one tracking
// period, highest scores first, so the committee can see who the lottery
// has been shorting.
func FairnessReport(
	ctx context.Context,
	database FairnessReportStore,
	logger *zap.Logger,
	period string,
) (*FairnessReportResult, error) {
	logger.Debug("Starting fairnessReport", zap.String("period", period))

	records, err := database.GetFairnessRecords(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fairness records: %w", err)
	}
	logger.Debug("Found fairness records", zap.Int("count", len(records)))

	members, err := database.GetMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	memberIndex := membersByID(members)

	rows := make([]FairnessReportRow, 0, len(records))
	for _, record := range records {
		name := record.MemberID
		if member, exists := memberIndex[record.MemberID]; exists {
			name = fmt.Sprintf("%s %s", member.FirstName, member.LastName)
		}

		rows = append(rows, FairnessReportRow{
			MemberID:           record.MemberID,
			MemberName:         name,
			TotalEntries:       record.TotalEntries,
			PreferencesGranted: record.PreferencesGranted,
			FulfillmentRate:    record.FulfillmentRate,
			MissStreak:         record.MissStreak,
			FairnessScore:      record.FairnessScore,
		})
	}

	// Highest score first, ties by name for stable output
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FairnessScore != rows[j].FairnessScore {
			return rows[i].FairnessScore > rows[j].FairnessScore
		}
		return rows[i].MemberName < rows[j].MemberName
	})

	logger.Debug("Fairness report built", zap.Int("rows", len(rows)))

	return &FairnessReportResult{
		Period: period,
		Rows:   rows,
	}, nil
}
