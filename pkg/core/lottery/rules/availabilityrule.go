package rules

import (
	"time"

	"github.com/dmaguire/fairway-lottery/pkg/core/lottery"
)

// AvailabilityRule blocks all requesters from slots within a date range,
// irrespective of member class. Used for course closures, tournaments and
// maintenance days.
type AvailabilityRule struct {
	RuleName string

	From time.Time
	To   time.Time

	Active       bool
	RulePriority int
	CanOverride  bool
}

func (r *AvailabilityRule) Name() string                   { return r.RuleName }
func (r *AvailabilityRule) Category() lottery.RuleCategory { return lottery.CategoryAvailability }
func (r *AvailabilityRule) Priority() int                  { return r.RulePriority }
func (r *AvailabilityRule) Overridable() bool              { return r.CanOverride }

func (r *AvailabilityRule) Blocks(ctx *lottery.EvalContext, q lottery.EligibilityQuery) bool {
	if !r.Active {
		return false
	}
	return dateInRange(q.Date, &r.From, &r.To)
}
