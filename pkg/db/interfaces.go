package db

import (
	"context"
	"time"
)

// Database defines the full set of store operations the lottery services
// consume. pkg/postgres implements it; individual services declare the
// narrow subset they need.
type Database interface {
	GetPendingRequests(ctx context.Context, date string) ([]Request, error)
	GetAvailableSlots(ctx context.Context, date string) ([]Slot, error)
	GetActiveRules(ctx context.Context, date string) ([]Rule, error)
	GetMembers(ctx context.Context) ([]Member, error)
	GetFairnessRecords(ctx context.Context, period string) ([]FairnessRecord, error)
	GetSpeedProfiles(ctx context.Context) ([]SpeedProfile, error)
	GetRecentBookings(ctx context.Context, before time.Time, periodDays int) ([]Booking, error)
	GetAssignments(ctx context.Context, date string) ([]Assignment, error)

	InsertAssignments(ctx context.Context, assignments []Assignment) error
	UpdateRequestStatus(ctx context.Context, requestID, status, assignedSlotID string) error
	UpsertFairnessRecord(ctx context.Context, record FairnessRecord) error
}
