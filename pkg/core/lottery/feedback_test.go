package lottery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_MonthlyRollover(t *testing.T) {
	assert.Equal(t, "2025-09", Period(time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-10", Period(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)))
}

func TestUpdateFairness_PreferredWindowGranted(t *testing.T) {
	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		PreferredWindow: "morning",
	}
	records := map[string]*FairnessRecord{}

	touched := UpdateFairness(FeedbackInput{
		Assignments: []Assignment{{RequestID: "req-1", SlotID: "slot-1", StartMinute: 8 * 60}},
		Requests:    map[string]*Request{"req-1": req},
		Windows:     testWindows,
		Records:     records,
		Period:      "2025-09",
	})

	require.Len(t, touched, 1)
	record := touched[0]
	assert.Equal(t, "alice", record.MemberID)
	assert.Equal(t, 1, record.TotalEntries)
	assert.Equal(t, 1, record.PreferencesGranted)
	assert.Equal(t, 1.0, record.FulfillmentRate)
	assert.Equal(t, 0, record.MissStreak)
	assert.Equal(t, 0.0, record.FairnessScore)
}

func TestUpdateFairness_MissRaisesScore(t *testing.T) {
	// A member sitting at 40% fulfillment gets a non-preferred slot
	// again; their score must rise so they climb the next queue
	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		PreferredWindow: "morning",
	}
	prior := &FairnessRecord{
		MemberID:           "alice",
		Period:             "2025-09",
		TotalEntries:       5,
		PreferencesGranted: 2,
		FulfillmentRate:    0.4,
		MissStreak:         1,
		FairnessScore:      12, // 10 base + 2 streak
	}
	records := map[string]*FairnessRecord{"alice": prior}

	touched := UpdateFairness(FeedbackInput{
		Assignments: []Assignment{{RequestID: "req-1", SlotID: "slot-1", StartMinute: 14 * 60}},
		Requests:    map[string]*Request{"req-1": req},
		Windows:     testWindows,
		Records:     records,
		Period:      "2025-09",
	})

	require.Len(t, touched, 1)
	record := touched[0]
	assert.Equal(t, 6, record.TotalEntries)
	assert.Equal(t, 2, record.PreferencesGranted)
	assert.InDelta(t, 2.0/6.0, record.FulfillmentRate, 1e-9)
	assert.Equal(t, 2, record.MissStreak)
	assert.Greater(t, record.FairnessScore, 12.0)
}

func TestUpdateFairness_RuleLimitedCountsAsGranted(t *testing.T) {
	// A preference miss caused solely by an eligibility rule must not
	// hurt the member's fairness standing
	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "RESTRICTED"}},
		PreferredWindow: "morning",
	}
	records := map[string]*FairnessRecord{}

	touched := UpdateFairness(FeedbackInput{
		Assignments: []Assignment{{
			RequestID:   "req-1",
			SlotID:      "slot-1",
			StartMinute: 14 * 60, // outside the preferred window
			RuleLimited: true,
		}},
		Requests: map[string]*Request{"req-1": req},
		Windows:  testWindows,
		Records:  records,
		Period:   "2025-09",
	})

	require.Len(t, touched, 1)
	assert.Equal(t, 1, touched[0].PreferencesGranted)
	assert.Equal(t, 0, touched[0].MissStreak)
}

func TestUpdateFairness_GroupUpdatesOrganizerOnly(t *testing.T) {
	req := &Request{
		ID: "req-1",
		Members: []Member{
			{ID: "alice", Class: "FULL"},
			{ID: "bob", Class: "FULL"},
		},
		PreferredWindow: "morning",
	}
	records := map[string]*FairnessRecord{}

	touched := UpdateFairness(FeedbackInput{
		Assignments: []Assignment{{
			RequestID:   "req-1",
			SlotID:      "slot-1",
			MemberIDs:   []string{"alice", "bob"},
			StartMinute: 8 * 60,
		}},
		Requests: map[string]*Request{"req-1": req},
		Windows:  testWindows,
		Records:  records,
		Period:   "2025-09",
	})

	require.Len(t, touched, 1)
	assert.Equal(t, "alice", touched[0].MemberID)
	assert.NotContains(t, records, "bob")
}

func TestUpdateFairness_StreakResetsOnGrant(t *testing.T) {
	req := &Request{
		ID:              "req-1",
		Members:         []Member{{ID: "alice", Class: "FULL"}},
		PreferredWindow: "morning",
	}
	prior := &FairnessRecord{
		MemberID:           "alice",
		Period:             "2025-09",
		TotalEntries:       4,
		PreferencesGranted: 0,
		FulfillmentRate:    0,
		MissStreak:         4,
		FairnessScore:      23,
	}

	touched := UpdateFairness(FeedbackInput{
		Assignments: []Assignment{{RequestID: "req-1", SlotID: "slot-1", StartMinute: 8 * 60}},
		Requests:    map[string]*Request{"req-1": req},
		Windows:     testWindows,
		Records:     map[string]*FairnessRecord{"alice": prior},
		Period:      "2025-09",
	})

	require.Len(t, touched, 1)
	assert.Equal(t, 0, touched[0].MissStreak)
}

func TestFairnessScore_ThresholdBandsAndStreakCap(t *testing.T) {
	// Band boundaries are inclusive on the upper side
	assert.Equal(t, 0.0, fairnessScore(0.80, 0))
	assert.Equal(t, 0.0, fairnessScore(0.75, 0))
	assert.Equal(t, 5.0, fairnessScore(0.60, 0))
	assert.Equal(t, 10.0, fairnessScore(0.40, 0))
	assert.Equal(t, 15.0, fairnessScore(0.10, 0))

	// Streak bonus accumulates at 2 per miss and caps at 10
	assert.Equal(t, 19.0, fairnessScore(0.10, 2))
	assert.Equal(t, 25.0, fairnessScore(0.10, 5))
	assert.Equal(t, 25.0, fairnessScore(0.10, 50))
}
