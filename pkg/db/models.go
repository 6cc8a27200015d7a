package db

import "time"

// Request represents a lottery request record. MemberIDs always includes
// the organizer; an individual request has exactly one entry.
type Request struct {
	ID              string
	Date            string // "2006-01-02"
	OrganizerID     string
	MemberIDs       []string
	PreferredWindow string
	AlternateWindow string
	SubmittedAt     time.Time
	Status          string
	AssignedSlotID  string
}

// Slot represents a tee-time slot record. Remaining is derived from
// capacity minus persisted assignments at load time.
type Slot struct {
	ID          string
	Date        string
	StartMinute int
	Capacity    int
	Remaining   int
}

// Rule categories as stored
const (
	RuleCategoryTime         = "TIME"
	RuleCategoryFrequency    = "FREQUENCY"
	RuleCategoryAvailability = "AVAILABILITY"
)

// Rule represents an eligibility rule record. Fields are a union over the
// three categories; unused fields are zero.
type Rule struct {
	ID          string
	Name        string
	Category    string
	MemberClass string

	// Time rules
	StartMinute int
	EndMinute   int
	DayRRule    string // weekly RRULE naming the days, empty = all days

	// Time and availability rules
	DateFrom *time.Time
	DateTo   *time.Time

	// Frequency rules
	MaxCount   int
	PeriodDays int

	Overridable bool
	Priority    int
	Active      bool
}

// Member represents a club member record
type Member struct {
	ID        string
	FirstName string
	LastName  string
	Class     string
	Active    bool
}

// FairnessRecord represents a per-member, per-period fairness record
type FairnessRecord struct {
	MemberID           string
	Period             string
	TotalEntries       int
	PreferencesGranted int
	FulfillmentRate    float64
	MissStreak         int
	FairnessScore      float64
}

// SpeedProfile represents a member's pace-of-play profile
type SpeedProfile struct {
	MemberID        string
	Tier            string
	AdminAdjustment float64
}

// Booking represents a confirmed booking, used by frequency rules to
// count holdings inside their rolling window.
type Booking struct {
	MemberID string
	Date     time.Time
}

// Assignment represents one member's seat in a placed request. A group
// placement writes one row per member, all in one transaction.
type Assignment struct {
	ID             string
	RequestID      string
	SlotID         string
	Date           string
	MemberID       string
	StartMinute    int
	PolicyFallback bool
}
