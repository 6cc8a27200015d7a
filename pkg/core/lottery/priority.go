package lottery

// Bounds and tuning for priority scoring. Fairness scores run 0-25, so the
// speed bonus and admin adjustment stay small enough that a well-treated
// fast player never outranks a golfer the lottery has been shorting.
const (
	// AdminAdjustmentMin and AdminAdjustmentMax clamp the manual
	// priority adjustment carried on a speed profile.
	AdminAdjustmentMin = -10
	AdminAdjustmentMax = 10
)

// speedBonusByPosition holds the bonus for a speed tier requesting the
// window at the given position in the day. Early windows are the
// high-demand ones, so fast players get the largest boost there, with
// diminishing bonuses later in the day.
var speedBonusByPosition = map[SpeedTier][]float64{
	SpeedFast:    {5, 3, 2, 1},
	SpeedAverage: {1},
	SpeedSlow:    {},
}

// Priority computes the assignment priority for a request: the persisted
// fairness score (0 when the member has no record this period), plus the
// speed bonus for the preferred window, plus the clamped manual
// adjustment. No side effects.
func Priority(req *Request, record *FairnessRecord, profile *SpeedProfile, windows []TimeWindow) float64 {
	score := 0.0
	if record != nil {
		score += record.FairnessScore
	}
	if profile != nil {
		score += speedBonus(profile.Tier, req.PreferredWindow, windows)
		score += clamp(profile.AdminAdjustment, AdminAdjustmentMin, AdminAdjustmentMax)
	}
	return score
}

// speedBonus looks up the bonus for the tier and the preferred window's
// position in the day. Unknown labels and late windows earn nothing.
func speedBonus(tier SpeedTier, preferredLabel string, windows []TimeWindow) float64 {
	bonuses, ok := speedBonusByPosition[tier]
	if !ok {
		return 0
	}
	for i, w := range windows {
		if w.Label == preferredLabel {
			if i < len(bonuses) {
				return bonuses[i]
			}
			return 0
		}
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
