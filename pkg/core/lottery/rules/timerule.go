package rules

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/dmaguire/fairway-lottery/pkg/core/lottery"
)

// TimeRule blocks a member class from slots in a minute-of-day range on
// specific days of the week, optionally only within a date range.
//
// Blocks when all of:
//   - the rule is active
//   - the member's class matches
//   - the slot's start minute falls in [StartMinute, EndMinute)
//   - the request date's weekday is in Days (empty set = every day)
//   - the request date falls inside [From, To] when a range is set
type TimeRule struct {
	RuleName    string
	MemberClass string
	StartMinute int
	EndMinute   int

	// Days the rule applies on; empty means all days
	Days map[time.Weekday]bool

	// Optional date range bounding the rule
	From *time.Time
	To   *time.Time

	Active       bool
	RulePriority int
	CanOverride  bool
}

func (r *TimeRule) Name() string                   { return r.RuleName }
func (r *TimeRule) Category() lottery.RuleCategory { return lottery.CategoryTime }
func (r *TimeRule) Priority() int                  { return r.RulePriority }
func (r *TimeRule) Overridable() bool              { return r.CanOverride }

func (r *TimeRule) Blocks(ctx *lottery.EvalContext, q lottery.EligibilityQuery) bool {
	if !r.Active {
		return false
	}
	if q.Member.Class != r.MemberClass {
		return false
	}
	if q.Slot.StartMinute < r.StartMinute || q.Slot.StartMinute >= r.EndMinute {
		return false
	}
	if len(r.Days) > 0 && !r.Days[q.Date.Weekday()] {
		return false
	}
	if !dateInRange(q.Date, r.From, r.To) {
		return false
	}
	return true
}

// WeekdaysFromRRule extracts the day-of-week set from a weekly RRULE
// string (e.g. "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"). An empty string means
// the rule applies every day and yields an empty set.
func WeekdaysFromRRule(s string) (map[time.Weekday]bool, error) {
	if s == "" {
		return map[time.Weekday]bool{}, nil
	}
	rule, err := rrule.StrToRRule(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule %q: %w", s, err)
	}

	days := make(map[time.Weekday]bool)
	for _, wd := range rule.OrigOptions.Byweekday {
		// rrule weekdays are Monday-based; time.Weekday is Sunday-based
		days[time.Weekday((wd.Day()+1)%7)] = true
	}
	return days, nil
}

// dateInRange checks an optional inclusive [from, to] date range,
// comparing at day granularity.
func dateInRange(date time.Time, from, to *time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	if from != nil && day.Before(from.Truncate(24*time.Hour)) {
		return false
	}
	if to != nil && day.After(to.Truncate(24*time.Hour)) {
		return false
	}
	return true
}
