package rules

import (
	"time"

	"github.com/dmaguire/fairway-lottery/pkg/core/lottery"
)

// FrequencyRule caps how many confirmed bookings a member class may hold
// within a rolling period ending at the request date. Admitting a request
// that would push the requester past MaxCount is blocked.
type FrequencyRule struct {
	RuleName    string
	MemberClass string

	// MaxCount is the cap on bookings held inside the rolling window
	MaxCount int

	// PeriodDays is the length of the rolling window
	PeriodDays int

	Active       bool
	RulePriority int
	CanOverride  bool
}

func (r *FrequencyRule) Name() string                   { return r.RuleName }
func (r *FrequencyRule) Category() lottery.RuleCategory { return lottery.CategoryFrequency }
func (r *FrequencyRule) Priority() int                  { return r.RulePriority }
func (r *FrequencyRule) Overridable() bool              { return r.CanOverride }

func (r *FrequencyRule) Blocks(ctx *lottery.EvalContext, q lottery.EligibilityQuery) bool {
	if !r.Active {
		return false
	}
	if q.Member.Class != r.MemberClass {
		return false
	}
	if r.PeriodDays <= 0 || r.MaxCount <= 0 {
		return false
	}

	held := r.countInWindow(ctx, q.Member.ID, q.Date)
	return held+1 > r.MaxCount
}

// countInWindow counts the member's confirmed bookings in the rolling
// window (date - PeriodDays, date].
func (r *FrequencyRule) countInWindow(ctx *lottery.EvalContext, memberID string, date time.Time) int {
	if ctx == nil || ctx.Bookings == nil {
		return 0
	}
	windowStart := date.AddDate(0, 0, -r.PeriodDays)

	count := 0
	for _, booked := range ctx.Bookings[memberID] {
		if booked.After(windowStart) && !booked.After(date) {
			count++
		}
	}
	return count
}
