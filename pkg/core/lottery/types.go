package lottery

import (
	"slices"
	"time"
)

// Status is the lifecycle state of a lottery request
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAssigned  Status = "ASSIGNED"
	StatusCancelled Status = "CANCELLED"
)

// SpeedTier is a coarse pace-of-play classification for a member
type SpeedTier string

const (
	SpeedFast    SpeedTier = "FAST"
	SpeedAverage SpeedTier = "AVERAGE"
	SpeedSlow    SpeedTier = "SLOW"
)

// Member identifies a requester and the class their eligibility rules key on
type Member struct {
	ID    string
	Class string
}

// Request represents a unit of lottery demand for a single date.
// An individual request has one member; a group request has two or more,
// with the organizer always first. Groups are admitted all-or-nothing.
type Request struct {
	ID string

	// Members admitted together (organizer first, never empty for valid input)
	Members []Member

	// Date the tee time is requested for
	Date time.Time

	// PreferredWindow and AlternateWindow are window labels from the
	// resolved day windows. AlternateWindow may be empty.
	PreferredWindow string
	AlternateWindow string

	// SubmittedAt breaks priority ties (earlier wins)
	SubmittedAt time.Time

	Status Status

	// AssignedSlotID is set once the request is placed
	AssignedSlotID string

	// Priority is annotated by the fairness scorer before assignment
	Priority float64
}

// Organizer returns the member whose fairness record tracks this request
func (r *Request) Organizer() Member {
	return r.Members[0]
}

// Size returns the number of seats this request needs in one slot
func (r *Request) Size() int {
	return len(r.Members)
}

// IsGroup reports whether this request must be placed as a party of 2+
func (r *Request) IsGroup() bool {
	return len(r.Members) > 1
}

// MemberIDs returns the identifiers of all members on the request
func (r *Request) MemberIDs() []string {
	ids := make([]string, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.ID
	}
	return ids
}

// Slot is a bookable tee time for a date. Remaining is mutated in memory
// during a run and must never go negative or exceed Capacity.
type Slot struct {
	ID          string
	StartMinute int
	Capacity    int
	Remaining   int
}

// HasCapacity reports whether the slot can still admit a party of the given size
func (s *Slot) HasCapacity(size int) bool {
	return s.Remaining >= size
}

// TimeWindow is a named contiguous range of minute-of-day.
// EndMinute is exclusive.
type TimeWindow struct {
	Label       string
	StartMinute int
	EndMinute   int
}

// Contains reports whether the minute-of-day falls inside this window
func (w TimeWindow) Contains(minute int) bool {
	return minute >= w.StartMinute && minute < w.EndMinute
}

// WindowFor returns the window containing the given minute-of-day,
// or false if no window covers it.
func WindowFor(windows []TimeWindow, minute int) (TimeWindow, bool) {
	for _, w := range windows {
		if w.Contains(minute) {
			return w, true
		}
	}
	return TimeWindow{}, false
}

// windowByLabel returns the window with the given label, or false.
// An empty label never matches.
func windowByLabel(windows []TimeWindow, label string) (TimeWindow, bool) {
	if label == "" {
		return TimeWindow{}, false
	}
	idx := slices.IndexFunc(windows, func(w TimeWindow) bool { return w.Label == label })
	if idx < 0 {
		return TimeWindow{}, false
	}
	return windows[idx], true
}

// SpeedProfile is per-member pace state owned outside the engine.
// Only the priority bonus reads it.
type SpeedProfile struct {
	MemberID        string
	Tier            SpeedTier
	AdminAdjustment float64
}

// FairnessRecord is the rolling per-member, per-period fairness state.
// Created lazily on a member's first scored request in a period and
// mutated only by the feedback updater.
type FairnessRecord struct {
	MemberID           string
	Period             string
	TotalEntries       int
	PreferencesGranted int
	FulfillmentRate    float64
	MissStreak         int
	FairnessScore      float64
}

// Assignment is the durable output of one successful placement.
type Assignment struct {
	RequestID   string
	SlotID      string
	MemberIDs   []string
	StartMinute int

	// PolicyFallback marks a placement that ignored eligibility rules
	// because no compliant slot had capacity.
	PolicyFallback bool

	// RuleLimited marks that a preferred- or alternate-window slot had
	// capacity for this request but an eligibility rule vetoed it. The
	// feedback updater treats such assignments as preference-granted.
	RuleLimited bool
}

// SkippedRequest records a request dropped from the pass with the reason,
// so the caller can log it without the engine owning a logger.
type SkippedRequest struct {
	RequestID string
	Reason    string
}

// RunSummary is the operator-visible result of one lottery pass.
type RunSummary struct {
	TotalRequests   int
	ProcessedCount  int
	BookingsCreated int
	FallbackCount   int
	SkippedCount    int
	PendingCount    int
}
