package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fourWindows() []TimeWindow {
	return []TimeWindow{
		{Label: "morning", StartMinute: 360, EndMinute: 600},
		{Label: "midday", StartMinute: 600, EndMinute: 840},
		{Label: "afternoon", StartMinute: 840, EndMinute: 1080},
		{Label: "evening", StartMinute: 1080, EndMinute: 1260},
	}
}

func TestPriority_NoRecordNoProfile(t *testing.T) {
	req := &Request{PreferredWindow: "morning"}
	assert.Equal(t, 0.0, Priority(req, nil, nil, fourWindows()))
}

func TestPriority_FairnessScoreCarriesOver(t *testing.T) {
	req := &Request{PreferredWindow: "morning"}
	record := &FairnessRecord{FairnessScore: 15}
	assert.Equal(t, 15.0, Priority(req, record, nil, fourWindows()))
}

func TestPriority_SpeedBonusByWindowPosition(t *testing.T) {
	windows := fourWindows()
	fast := &SpeedProfile{Tier: SpeedFast}

	// Fast players earn the biggest boost for the earliest window,
	// tapering off across the day
	assert.Equal(t, 5.0, Priority(&Request{PreferredWindow: "morning"}, nil, fast, windows))
	assert.Equal(t, 3.0, Priority(&Request{PreferredWindow: "midday"}, nil, fast, windows))
	assert.Equal(t, 2.0, Priority(&Request{PreferredWindow: "afternoon"}, nil, fast, windows))
	assert.Equal(t, 1.0, Priority(&Request{PreferredWindow: "evening"}, nil, fast, windows))

	average := &SpeedProfile{Tier: SpeedAverage}
	assert.Equal(t, 1.0, Priority(&Request{PreferredWindow: "morning"}, nil, average, windows))
	assert.Equal(t, 0.0, Priority(&Request{PreferredWindow: "midday"}, nil, average, windows))

	slow := &SpeedProfile{Tier: SpeedSlow}
	assert.Equal(t, 0.0, Priority(&Request{PreferredWindow: "morning"}, nil, slow, windows))
}

func TestPriority_UnknownWindowEarnsNoBonus(t *testing.T) {
	fast := &SpeedProfile{Tier: SpeedFast}
	assert.Equal(t, 0.0, Priority(&Request{PreferredWindow: "twilight"}, nil, fast, fourWindows()))
}

func TestPriority_AdminAdjustmentIsClamped(t *testing.T) {
	windows := fourWindows()
	req := &Request{PreferredWindow: "midday"}

	boosted := &SpeedProfile{Tier: SpeedSlow, AdminAdjustment: 50}
	assert.Equal(t, 10.0, Priority(req, nil, boosted, windows))

	penalized := &SpeedProfile{Tier: SpeedSlow, AdminAdjustment: -50}
	assert.Equal(t, -10.0, Priority(req, nil, penalized, windows))

	mild := &SpeedProfile{Tier: SpeedSlow, AdminAdjustment: 3}
	assert.Equal(t, 3.0, Priority(req, nil, mild, windows))
}

func TestPriority_AllComponentsSum(t *testing.T) {
	req := &Request{PreferredWindow: "morning"}
	record := &FairnessRecord{FairnessScore: 12}
	profile := &SpeedProfile{Tier: SpeedFast, AdminAdjustment: 2}

	assert.Equal(t, 19.0, Priority(req, record, profile, fourWindows()))
}
