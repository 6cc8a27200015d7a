package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/internal/config"
	"github.com/dmaguire/fairway-lottery/pkg/core/lottery"
	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// RunLotteryResult contains the outcome of one lottery pass
type RunLotteryResult struct {
	Date        string
	Period      string
	Assignments []lottery.Assignment
	Skipped     []lottery.SkippedRequest
	Summary     lottery.RunSummary

	// FairnessUpdated counts the fairness records written back
	FairnessUpdated int
}

// RunLotteryStore defines the database operations needed for a lottery pass
type RunLotteryStore interface {
	GetPendingRequests(ctx context.Context, date string) ([]db.Request, error)
	GetAvailableSlots(ctx context.Context, date string) ([]db.Slot, error)
	GetActiveRules(ctx context.Context, date string) ([]db.Rule, error)
	GetMembers(ctx context.Context) ([]db.Member, error)
	GetFairnessRecords(ctx context.Context, period string) ([]db.FairnessRecord, error)
	GetSpeedProfiles(ctx context.Context) ([]db.SpeedProfile, error)
	GetRecentBookings(ctx context.Context, before time.Time, periodDays int) ([]db.Booking, error)
	InsertAssignments(ctx context.Context, assignments []db.Assignment) error
	UpdateRequestStatus(ctx context.Context, requestID, status, assignedSlotID string) error
	UpsertFairnessRecord(ctx context.Context, record db.FairnessRecord) error
}

// RunLottery runs the lottery pass for one date: resolve the site's time
// windows, load everything the engine needs, assign, then persist each
// placement and the fairness feedback. If dryRun is true nothing is
// written back.
//
// Persistence happens per placement, in decision order, so an interrupted
// run leaves a consistent prefix that the next run picks up from.
func RunLottery(
	ctx context.Context,
	database RunLotteryStore,
	cfg *config.Config,
	logger *zap.Logger,
	dateStr string,
	dryRun bool,
) (*RunLotteryResult, error) {
	logger.Debug("Starting runLottery",
		zap.String("date", dateStr),
		zap.Bool("dry_run", dryRun))

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	// Step 1: Resolve time windows. A window failure aborts before any
	// state is touched.
	windowConfig, err := buildWindowConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build window configuration: %w", err)
	}
	windows, err := lottery.ResolveWindows(windowConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve time windows: %w", err)
	}
	logger.Debug("Resolved time windows", zap.Int("count", len(windows)))

	// Step 2: DB query - Fetch members
	logger.Debug("Fetching members")
	allMembers, err := database.GetMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	logger.Debug("Found members", zap.Int("count", len(allMembers)))
	memberIndex := membersByID(allMembers)

	// Step 3: DB query - Fetch pending requests for the date
	logger.Debug("Fetching pending requests")
	dbRequests, err := database.GetPendingRequests(ctx, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending requests: %w", err)
	}
	logger.Debug("Found pending requests", zap.Int("count", len(dbRequests)))

	// Step 4: DB query - Fetch slots with remaining capacity
	logger.Debug("Fetching available slots")
	dbSlots, err := database.GetAvailableSlots(ctx, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}
	logger.Debug("Found slots", zap.Int("count", len(dbSlots)))

	// Step 5: DB query - Fetch active rules and convert them
	logger.Debug("Fetching active rules")
	dbRules, err := database.GetActiveRules(ctx, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}
	engineRules, err := convertRules(dbRules)
	if err != nil {
		return nil, fmt.Errorf("failed to convert rules: %w", err)
	}
	logger.Debug("Converted rules", zap.Int("count", len(engineRules)))

	// Step 6: DB query - Fetch bookings inside the widest frequency window
	var bookings []db.Booking
	if periodDays := maxFrequencyPeriodDays(dbRules); periodDays > 0 {
		logger.Debug("Fetching recent bookings", zap.Int("period_days", periodDays))
		bookings, err = database.GetRecentBookings(ctx, date, periodDays)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch bookings: %w", err)
		}
		logger.Debug("Found bookings", zap.Int("count", len(bookings)))
	}

	// Step 7: DB query - Fetch fairness records and speed profiles
	period := lottery.Period(date)
	logger.Debug("Fetching fairness records", zap.String("period", period))
	dbRecords, err := database.GetFairnessRecords(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fairness records: %w", err)
	}
	records := fairnessRecordsByMember(dbRecords)

	logger.Debug("Fetching speed profiles")
	dbProfiles, err := database.GetSpeedProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch speed profiles: %w", err)
	}
	profiles := speedProfilesByMember(dbProfiles, logger)

	// Step 8: Convert requests and annotate priorities
	groups, individuals, requestsByID := convertRequests(dbRequests, memberIndex, logger)
	for _, req := range requestsByID {
		if len(req.Members) == 0 {
			continue
		}
		organizerID := req.Organizer().ID
		req.Priority = lottery.Priority(req, records[organizerID], profiles[organizerID], windows)
	}
	logger.Debug("Prepared requests",
		zap.Int("groups", len(groups)),
		zap.Int("individuals", len(individuals)))

	// Step 9: Run the assignment engine
	filter := lottery.NewFilter(engineRules, &lottery.EvalContext{
		Bookings: bookingsByMember(bookings),
	})

	logger.Info("Running lottery assignment")
	outcome, err := lottery.Assign(lottery.AssignInput{
		Date:         date,
		Groups:       groups,
		Individuals:  individuals,
		Slots:        convertSlots(dbSlots),
		Windows:      windows,
		Filter:       filter,
		MaxPartySize: cfg.MaxPartySize,
	})
	if err != nil {
		return nil, fmt.Errorf("assignment failed: %w", err)
	}

	logger.Info("Assignment completed",
		zap.Int("bookings_created", outcome.Summary.BookingsCreated),
		zap.Int("fallbacks", outcome.Summary.FallbackCount),
		zap.Int("skipped", outcome.Summary.SkippedCount),
		zap.Int("pending", outcome.Summary.PendingCount))

	for _, skipped := range outcome.Skipped {
		logger.Warn("Request skipped",
			zap.String("request_id", skipped.RequestID),
			zap.String("reason", skipped.Reason))
	}

	// Step 10: Persist assignments in decision order
	if !dryRun {
		for _, a := range outcome.Assignments {
			if err := persistAssignment(ctx, database, dateStr, a); err != nil {
				return nil, fmt.Errorf("failed to persist assignment for request %s: %w", a.RequestID, err)
			}
		}
		logger.Info("Assignments saved", zap.Int("count", len(outcome.Assignments)))
	} else {
		logger.Info("Dry run mode - assignments not saved")
	}

	// Step 11: Fairness feedback
	touched := lottery.UpdateFairness(lottery.FeedbackInput{
		Assignments: outcome.Assignments,
		Requests:    requestsByID,
		Windows:     windows,
		Records:     records,
		Period:      period,
	})

	if !dryRun {
		for _, record := range touched {
			if err := database.UpsertFairnessRecord(ctx, db.FairnessRecord{
				MemberID:           record.MemberID,
				Period:             record.Period,
				TotalEntries:       record.TotalEntries,
				PreferencesGranted: record.PreferencesGranted,
				FulfillmentRate:    record.FulfillmentRate,
				MissStreak:         record.MissStreak,
				FairnessScore:      record.FairnessScore,
			}); err != nil {
				return nil, fmt.Errorf("failed to save fairness record for member %s: %w", record.MemberID, err)
			}
		}
		logger.Info("Fairness records saved", zap.Int("count", len(touched)))
	} else {
		logger.Info("Dry run mode - fairness records not saved")
	}

	return &RunLotteryResult{
		Date:            dateStr,
		Period:          period,
		Assignments:     outcome.Assignments,
		Skipped:         outcome.Skipped,
		Summary:         outcome.Summary,
		FairnessUpdated: len(touched),
	}, nil
}

// persistAssignment writes the assignment rows for one placed request and
// flips the request's status. The rows for a group commit in one
// transaction inside InsertAssignments.
func persistAssignment(ctx context.Context, database RunLotteryStore, dateStr string, a lottery.Assignment) error {
	rows := make([]db.Assignment, len(a.MemberIDs))
	for i, memberID := range a.MemberIDs {
		rows[i] = db.Assignment{
			ID:             uuid.New().String(),
			RequestID:      a.RequestID,
			SlotID:         a.SlotID,
			Date:           dateStr,
			MemberID:       memberID,
			StartMinute:    a.StartMinute,
			PolicyFallback: a.PolicyFallback,
		}
	}

	if err := database.InsertAssignments(ctx, rows); err != nil {
		return err
	}
	return database.UpdateRequestStatus(ctx, a.RequestID, string(lottery.StatusAssigned), a.SlotID)
}
