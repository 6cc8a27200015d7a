package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/internal/config"
	"github.com/dmaguire/fairway-lottery/pkg/clients/sheetsclient"
	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// PublishTeeSheetResult contains the publishing outcome for display
type PublishTeeSheetResult struct {
	Date          string
	SpreadsheetID string
	RowCount      int
	PlayerCount   int
}

// PublishTeeSheetStore defines the database operations needed for publishing
type PublishTeeSheetStore interface {
	GetAssignments(ctx context.Context, date string) ([]db.Assignment, error)
	GetMembers(ctx context.Context) ([]db.Member, error)
}

// TeeSheetPublisher defines the sheet operations needed for publishing
type TeeSheetPublisher interface {
	PublishTeeSheet(spreadsheetID string, teeSheet *sheetsclient.TeeSheet) error
}

// PublishTeeSheet builds the tee sheet for one date from persisted
// assignments and pushes it to the configured Google Sheet, one row per
// tee time with all players at that time.
func PublishTeeSheet(
	ctx context.Context,
	database PublishTeeSheetStore,
	sheetsClient TeeSheetPublisher,
	cfg *config.Config,
	logger *zap.Logger,
	date string,
) (*PublishTeeSheetResult, error) {
	logger.Debug("Starting publishTeeSheet", zap.String("date", date))

	if cfg.TeeSheetSpreadsheetID == "" {
		return nil, fmt.Errorf("no teeSheetSpreadsheetID configured - nothing to publish to")
	}

	// Step 1: Fetch assignments for the date
	logger.Debug("Fetching assignments")
	assignments, err := database.GetAssignments(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	logger.Debug("Found assignments", zap.Int("count", len(assignments)))

	if len(assignments) == 0 {
		return nil, fmt.Errorf("no assignments found for %s - run the lottery first", date)
	}

	// Step 2: Fetch members for display names
	logger.Debug("Fetching members")
	members, err := database.GetMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	memberIndex := membersByID(members)

	// Step 3: Group assignments by start minute
	byStartMinute := make(map[int][]db.Assignment)
	for _, a := range assignments {
		byStartMinute[a.StartMinute] = append(byStartMinute[a.StartMinute], a)
	}

	startMinutes := make([]int, 0, len(byStartMinute))
	for minute := range byStartMinute {
		startMinutes = append(startMinutes, minute)
	}
	sort.Ints(startMinutes)

	// Step 4: Build the tee sheet rows
	rows := make([]sheetsclient.TeeSheetRow, 0, len(startMinutes))
	playerCount := 0

	for _, minute := range startMinutes {
		slotAssignments := byStartMinute[minute]

		players := make([]string, 0, len(slotAssignments))
		notes := ""
		for _, a := range slotAssignments {
			name := a.MemberID
			if member, exists := memberIndex[a.MemberID]; exists {
				name = fmt.Sprintf("%s %s", member.FirstName, member.LastName)
			}
			players = append(players, name)
			if a.PolicyFallback {
				notes = "includes fallback placement"
			}
		}
		sort.Strings(players)
		playerCount += len(players)

		rows = append(rows, sheetsclient.TeeSheetRow{
			TeeTime: fmt.Sprintf("%02d:%02d", minute/60, minute%60),
			Players: players,
			Notes:   notes,
		})
	}

	// Step 5: Publish
	logger.Info("Publishing tee sheet",
		zap.String("date", date),
		zap.Int("rows", len(rows)),
		zap.Int("players", playerCount))

	if err := sheetsClient.PublishTeeSheet(cfg.TeeSheetSpreadsheetID, &sheetsclient.TeeSheet{
		Date: date,
		Rows: rows,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish tee sheet: %w", err)
	}

	return &PublishTeeSheetResult{
		Date:          date,
		SpreadsheetID: cfg.TeeSheetSpreadsheetID,
		RowCount:      len(rows),
		PlayerCount:   playerCount,
	}, nil
}
