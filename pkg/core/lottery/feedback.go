package lottery

import "time"

// Fairness scoring tuning. A fulfillment rate below each threshold earns
// the corresponding base score, and every consecutive miss adds a capped
// streak bonus, so golfers the lottery keeps shorting climb the queue.
const (
	fulfillmentHigh = 0.75
	fulfillmentMid  = 0.5
	fulfillmentLow  = 0.25

	baseScoreHigh   = 0.0
	baseScoreMid    = 5.0
	baseScoreLow    = 10.0
	baseScoreBottom = 15.0

	streakBonusPerMiss = 2.0
	streakBonusCap     = 10.0
)

// Period returns the fairness tracking period key for a date. Records
// roll over monthly.
func Period(date time.Time) string {
	return date.Format("2006-01")
}

// FeedbackInput is the state the updater runs over after a pass.
type FeedbackInput struct {
	// Assignments produced by this run only
	Assignments []Assignment

	// Requests by ID, for window preferences and the organizer
	Requests map[string]*Request

	// Windows resolved for the run
	Windows []TimeWindow

	// Records holds the current period's fairness records by member ID.
	// Missing records are created lazily.
	Records map[string]*FairnessRecord

	// Period key the records belong to
	Period string
}

// UpdateFairness recomputes rolling fairness for every request assigned in
// this run and returns the records that were touched, in assignment
// order, for the caller to persist. For group requests only the
// organizer's record is updated.
//
// A preference counts as granted when the assigned start time falls in the
// preferred or alternate window, or when the miss was solely caused by an
// eligibility rule: golfers are never penalized for administrative rules
// they cannot control.
func UpdateFairness(in FeedbackInput) []*FairnessRecord {
	touched := make([]*FairnessRecord, 0, len(in.Assignments))
	seen := make(map[string]bool)

	for _, a := range in.Assignments {
		req, ok := in.Requests[a.RequestID]
		if !ok {
			continue
		}

		granted := preferenceGranted(req, a, in.Windows)

		memberID := req.Organizer().ID
		record, ok := in.Records[memberID]
		if !ok {
			record = &FairnessRecord{MemberID: memberID, Period: in.Period}
			in.Records[memberID] = record
		}

		record.TotalEntries++
		if granted {
			record.PreferencesGranted++
			record.MissStreak = 0
		} else {
			record.MissStreak++
		}
		record.FulfillmentRate = float64(record.PreferencesGranted) / float64(record.TotalEntries)
		record.FairnessScore = fairnessScore(record.FulfillmentRate, record.MissStreak)

		if !seen[memberID] {
			seen[memberID] = true
			touched = append(touched, record)
		}
	}

	return touched
}

func preferenceGranted(req *Request, a Assignment, windows []TimeWindow) bool {
	if w, ok := windowByLabel(windows, req.PreferredWindow); ok && w.Contains(a.StartMinute) {
		return true
	}
	if w, ok := windowByLabel(windows, req.AlternateWindow); ok && w.Contains(a.StartMinute) {
		return true
	}
	return a.RuleLimited
}

// fairnessScore maps the fulfillment rate to a base score by threshold
// bands and adds the capped streak bonus. Higher means more priority next
// cycle.
func fairnessScore(rate float64, missStreak int) float64 {
	var base float64
	switch {
	case rate >= fulfillmentHigh:
		base = baseScoreHigh
	case rate >= fulfillmentMid:
		base = baseScoreMid
	case rate >= fulfillmentLow:
		base = baseScoreLow
	default:
		base = baseScoreBottom
	}

	bonus := float64(missStreak) * streakBonusPerMiss
	if bonus > streakBonusCap {
		bonus = streakBonusCap
	}
	return base + bonus
}
