package lottery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRule implements Rule with a pluggable block function
type stubRule struct {
	name     string
	category RuleCategory
	priority int
	blocks   func(q EligibilityQuery) bool
}

func (r *stubRule) Name() string           { return r.name }
func (r *stubRule) Category() RuleCategory { return r.category }
func (r *stubRule) Priority() int          { return r.priority }
func (r *stubRule) Overridable() bool      { return false }
func (r *stubRule) Blocks(ctx *EvalContext, q EligibilityQuery) bool {
	return r.blocks(q)
}

var testWindows = []TimeWindow{
	{Label: "morning", StartMinute: 6 * 60, EndMinute: 12 * 60},
	{Label: "afternoon", StartMinute: 12 * 60, EndMinute: 18 * 60},
}

// wednesday is an arbitrary weekday used by rule-sensitive tests
var wednesday = time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)

func submittedAt(minute int) time.Time {
	return time.Date(2025, 9, 1, 8, minute, 0, 0, time.UTC)
}

func TestAssign_GroupFillsSlot(t *testing.T) {
	// One slot of capacity 4, one group of 4 preferring its window
	group := &Request{
		ID: "req-1",
		Members: []Member{
			{ID: "alice", Class: "FULL"},
			{ID: "bob", Class: "FULL"},
			{ID: "carol", Class: "FULL"},
			{ID: "dan", Class: "FULL"},
		},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(0),
		Status:          StatusPending,
	}
	slot := &Slot{ID: "slot-1", StartMinute: 8 * 60, Capacity: 4, Remaining: 4}

	outcome, err := Assign(AssignInput{
		Date:    wednesday,
		Groups:  []*Request{group},
		Slots:   []*Slot{slot},
		Windows: testWindows,
	})
	require.NoError(t, err)

	require.Len(t, outcome.Assignments, 1)
	assert.Equal(t, "slot-1", outcome.Assignments[0].SlotID)
	assert.Equal(t, []string{"alice", "bob", "carol", "dan"}, outcome.Assignments[0].MemberIDs)
	assert.False(t, outcome.Assignments[0].PolicyFallback)
	assert.Equal(t, 0, slot.Remaining)
	assert.Equal(t, StatusAssigned, group.Status)
	assert.Equal(t, "slot-1", group.AssignedSlotID)
	assert.Equal(t, 1, outcome.Summary.BookingsCreated)
}

func TestAssign_SubmissionTimeBreaksTie(t *testing.T) {
	// Two equal-priority individuals contest a capacity-1 slot;
	// the earlier submission wins and the later stays pending
	early := &Request{
		ID:              "req-early",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(1),
		Status:          StatusPending,
	}
	late := &Request{
		ID:              "req-late",
		Members:         []Member{{ID: "bob", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(2),
		Status:          StatusPending,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Individuals: []*Request{late, early},
		Slots:       []*Slot{{ID: "slot-1", StartMinute: 8 * 60, Capacity: 1, Remaining: 1}},
		Windows:     testWindows,
	})
	require.NoError(t, err)

	require.Len(t, outcome.Assignments, 1)
	assert.Equal(t, "req-early", outcome.Assignments[0].RequestID)
	assert.Equal(t, StatusAssigned, early.Status)
	assert.Equal(t, StatusPending, late.Status)
	assert.Equal(t, 1, outcome.Summary.PendingCount)
}

func TestAssign_PolicyFallbackWhenRuleBlocksOnlySlot(t *testing.T) {
	// A weekday time rule blocks the only slot for the member's class.
	// The last tier places them anyway, marked as a policy fallback, and
	// the rule denial makes the placement rule-limited.
	rule := &stubRule{
		name:     "restricted weekday mornings",
		category: CategoryTime,
		blocks: func(q EligibilityQuery) bool {
			return q.Member.Class == "RESTRICTED" && q.Slot.StartMinute < 12*60
		},
	}

	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "RESTRICTED"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(0),
		Status:          StatusPending,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Individuals: []*Request{req},
		Slots:       []*Slot{{ID: "slot-1", StartMinute: 8 * 60, Capacity: 4, Remaining: 4}},
		Windows:     testWindows,
		Filter:      NewFilter([]Rule{rule}, nil),
	})
	require.NoError(t, err)

	require.Len(t, outcome.Assignments, 1)
	a := outcome.Assignments[0]
	assert.Equal(t, "slot-1", a.SlotID)
	assert.True(t, a.PolicyFallback)
	assert.True(t, a.RuleLimited, "the miss was caused by the rule, not demand")
	assert.Equal(t, 1, outcome.Summary.FallbackCount)
}

func TestAssign_GroupsBeforeIndividuals(t *testing.T) {
	// The individual outranks the group on priority but groups are
	// resolved first, so the group takes the contested capacity
	group := &Request{
		ID:              "req-group",
		Members:         []Member{{ID: "alice", Class: "FULL"}, {ID: "bob", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(5),
		Status:          StatusPending,
		Priority:        1,
	}
	individual := &Request{
		ID:              "req-solo",
		Members:         []Member{{ID: "carol", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(0),
		Status:          StatusPending,
		Priority:        50,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Groups:      []*Request{group},
		Individuals: []*Request{individual},
		Slots:       []*Slot{{ID: "slot-1", StartMinute: 8 * 60, Capacity: 2, Remaining: 2}},
		Windows:     testWindows,
	})
	require.NoError(t, err)

	require.Len(t, outcome.Assignments, 1)
	assert.Equal(t, "req-group", outcome.Assignments[0].RequestID)
	assert.Equal(t, StatusPending, individual.Status)
}

func TestAssign_AlternateWindowWhenPreferredFull(t *testing.T) {
	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		AlternateWindow: "afternoon",
		SubmittedAt:     submittedAt(0),
		Status:          StatusPending,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Individuals: []*Request{req},
		Slots: []*Slot{
			{ID: "slot-am", StartMinute: 8 * 60, Capacity: 4, Remaining: 0},
			{ID: "slot-pm", StartMinute: 14 * 60, Capacity: 4, Remaining: 4},
		},
		Windows: testWindows,
	})
	require.NoError(t, err)

	require.Len(t, outcome.Assignments, 1)
	assert.Equal(t, "slot-pm", outcome.Assignments[0].SlotID)
	assert.False(t, outcome.Assignments[0].PolicyFallback)
}

func TestAssign_AnyEligibleTierWhenBothWindowsFull(t *testing.T) {
	// Preferred and alternate windows are full; an eligible slot in an
	// unrequested window is still a non-fallback placement
	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(0),
		Status:          StatusPending,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Individuals: []*Request{req},
		Slots: []*Slot{
			{ID: "slot-am", StartMinute: 8 * 60, Capacity: 4, Remaining: 0},
			{ID: "slot-pm", StartMinute: 14 * 60, Capacity: 4, Remaining: 4},
		},
		Windows: testWindows,
	})
	require.NoError(t, err)

	require.Len(t, outcome.Assignments, 1)
	a := outcome.Assignments[0]
	assert.Equal(t, "slot-pm", a.SlotID)
	assert.False(t, a.PolicyFallback)
	assert.False(t, a.RuleLimited, "the preferred window was full, not rule-blocked")
}

func TestAssign_SoftExhaustionStaysPending(t *testing.T) {
	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(0),
		Status:          StatusPending,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Individuals: []*Request{req},
		Slots:       []*Slot{{ID: "slot-1", StartMinute: 8 * 60, Capacity: 4, Remaining: 0}},
		Windows:     testWindows,
	})
	require.NoError(t, err)

	assert.Empty(t, outcome.Assignments)
	assert.Empty(t, outcome.Skipped)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, 1, outcome.Summary.PendingCount)
}

func TestAssign_SkipsAssignedAndCancelled(t *testing.T) {
	// Re-running a date must not double-book requests already settled
	assigned := &Request{
		ID:             "req-done",
		Members:        []Member{{ID: "alice", Class: "FULL"}},
		Date:           wednesday,
		SubmittedAt:    submittedAt(0),
		Status:         StatusAssigned,
		AssignedSlotID: "slot-old",
	}
	cancelled := &Request{
		ID:          "req-gone",
		Members:     []Member{{ID: "bob", Class: "FULL"}},
		Date:        wednesday,
		SubmittedAt: submittedAt(1),
		Status:      StatusCancelled,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Individuals: []*Request{assigned, cancelled},
		Slots:       []*Slot{{ID: "slot-1", StartMinute: 8 * 60, Capacity: 4, Remaining: 4}},
		Windows:     testWindows,
	})
	require.NoError(t, err)

	assert.Empty(t, outcome.Assignments)
	require.Len(t, outcome.Skipped, 2)
	assert.Equal(t, 2, outcome.Summary.SkippedCount)
	assert.Equal(t, "slot-old", assigned.AssignedSlotID)
	assert.Equal(t, 0, outcome.Summary.ProcessedCount)
}

func TestAssign_SkipsMalformedRequests(t *testing.T) {
	oversized := &Request{
		ID: "req-big",
		Members: []Member{
			{ID: "a", Class: "FULL"}, {ID: "b", Class: "FULL"},
			{ID: "c", Class: "FULL"}, {ID: "d", Class: "FULL"}, {ID: "e", Class: "FULL"},
		},
		Date:        wednesday,
		SubmittedAt: submittedAt(0),
		Status:      StatusPending,
	}
	unresolved := &Request{
		ID:          "req-ghost",
		Members:     []Member{{ID: "", Class: ""}},
		Date:        wednesday,
		SubmittedAt: submittedAt(1),
		Status:      StatusPending,
	}
	healthy := &Request{
		ID:              "req-ok",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(2),
		Status:          StatusPending,
	}

	outcome, err := Assign(AssignInput{
		Date:         wednesday,
		Groups:       []*Request{oversized},
		Individuals:  []*Request{unresolved, healthy},
		Slots:        []*Slot{{ID: "slot-1", StartMinute: 8 * 60, Capacity: 8, Remaining: 8}},
		Windows:      testWindows,
		MaxPartySize: 4,
	})
	require.NoError(t, err)

	// One bad request never poisons the rest of the pass
	require.Len(t, outcome.Assignments, 1)
	assert.Equal(t, "req-ok", outcome.Assignments[0].RequestID)
	assert.Equal(t, 2, outcome.Summary.SkippedCount)
}

func TestAssign_NoWindowsIsError(t *testing.T) {
	_, err := Assign(AssignInput{Date: wednesday})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window")
}

func TestAssign_PicksEarliestSlotInTier(t *testing.T) {
	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(0),
		Status:          StatusPending,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Individuals: []*Request{req},
		Slots: []*Slot{
			{ID: "slot-b", StartMinute: 9 * 60, Capacity: 4, Remaining: 4},
			{ID: "slot-a", StartMinute: 7 * 60, Capacity: 4, Remaining: 4},
			{ID: "slot-c", StartMinute: 7 * 60, Capacity: 4, Remaining: 4},
		},
		Windows: testWindows,
	})
	require.NoError(t, err)

	require.Len(t, outcome.Assignments, 1)
	assert.Equal(t, "slot-a", outcome.Assignments[0].SlotID, "earliest start, then lowest ID")
}

func TestAssign_PriorityOrdersWithinPhase(t *testing.T) {
	low := &Request{
		ID:              "req-low",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(0),
		Status:          StatusPending,
		Priority:        2,
	}
	high := &Request{
		ID:              "req-high",
		Members:         []Member{{ID: "bob", Class: "FULL"}},
		Date:            wednesday,
		PreferredWindow: "morning",
		SubmittedAt:     submittedAt(5),
		Status:          StatusPending,
		Priority:        17,
	}

	outcome, err := Assign(AssignInput{
		Date:        wednesday,
		Individuals: []*Request{low, high},
		Slots:       []*Slot{{ID: "slot-1", StartMinute: 8 * 60, Capacity: 1, Remaining: 1}},
		Windows:     testWindows,
	})
	require.NoError(t, err)

	require.Len(t, outcome.Assignments, 1)
	assert.Equal(t, "req-high", outcome.Assignments[0].RequestID)
}
