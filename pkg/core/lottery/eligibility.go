package lottery

import (
	"fmt"
	"sort"
	"time"
)

// RuleCategory classifies an eligibility rule. The order of these
// constants is also the reason-reporting precedence: when several rules
// block the same slot, the lowest category wins the human-readable reason,
// regardless of each rule's own priority field (which only orders rules
// inside the filter's evaluation list).
type RuleCategory int

const (
	CategoryAvailability RuleCategory = iota
	CategoryTime
	CategoryFrequency
)

func (c RuleCategory) String() string {
	switch c {
	case CategoryAvailability:
		return "availability"
	case CategoryTime:
		return "time"
	case CategoryFrequency:
		return "frequency"
	default:
		return "unknown"
	}
}

// Rule is a standing constraint on who may occupy a slot.
// Implementations live in the rules subpackage.
type Rule interface {
	// Name returns a human-readable identifier for this rule
	Name() string

	// Category classifies the rule for reason precedence
	Category() RuleCategory

	// Priority orders rules within the filter's evaluation list.
	// Lower values are evaluated first. It does not affect which
	// category wins the reported reason.
	Priority() int

	// Overridable reports whether a human may bypass this rule
	Overridable() bool

	// Blocks reports whether this rule forbids the queried member from
	// occupying the queried slot on the queried date.
	Blocks(ctx *EvalContext, q EligibilityQuery) bool
}

// EligibilityQuery is one slot/member/date question put to the filter.
type EligibilityQuery struct {
	Slot   Slot
	Date   time.Time
	Member Member
}

// EvalContext carries the pre-loaded state rules evaluate against.
// Everything is loaded before the assign pass begins; rules never touch
// external I/O.
type EvalContext struct {
	// Bookings holds each member's confirmed booking dates, used by
	// frequency rules to count holdings inside their rolling window.
	Bookings map[string][]time.Time
}

// Decision is the filter's answer for one query.
type Decision struct {
	Eligible bool

	// RuleLoadBearing distinguishes "a rule blocked this slot" from
	// "this slot was simply full" (capacity is the engine's concern).
	// The feedback updater uses it to avoid penalizing fairness for
	// rule-caused denials.
	RuleLoadBearing bool

	// Category and Reason describe the winning violation when not
	// eligible, following the Availability > Time > Frequency precedence.
	Category RuleCategory
	Reason   string
}

// Filter evaluates a loaded rule set against slot/member/date queries.
type Filter struct {
	rules []Rule
	ctx   *EvalContext
}

// NewFilter builds a filter over the given rules, ordered by each rule's
// own priority (stable, so load order breaks ties).
func NewFilter(ruleSet []Rule, ctx *EvalContext) *Filter {
	if ctx == nil {
		ctx = &EvalContext{}
	}
	ordered := make([]Rule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	return &Filter{rules: ordered, ctx: ctx}
}

// Evaluate runs every rule against the query. Multiple rules may fire;
// the reported reason comes from the highest-precedence category among
// them, not from the first rule evaluated.
func (f *Filter) Evaluate(q EligibilityQuery) Decision {
	var fired []Rule
	for _, rule := range f.rules {
		if rule.Blocks(f.ctx, q) {
			fired = append(fired, rule)
		}
	}

	if len(fired) == 0 {
		return Decision{Eligible: true}
	}

	winner := fired[0]
	for _, rule := range fired[1:] {
		if rule.Category() < winner.Category() {
			winner = rule
		}
	}

	return Decision{
		Eligible:        false,
		RuleLoadBearing: true,
		Category:        winner.Category(),
		Reason:          fmt.Sprintf("%s rule %q blocks this slot", winner.Category(), winner.Name()),
	}
}

// GroupEligible reports whether every member of the request may occupy the
// slot. A slot is usable by a group only if no member is blocked.
func (f *Filter) GroupEligible(slot Slot, date time.Time, members []Member) bool {
	for _, m := range members {
		d := f.Evaluate(EligibilityQuery{Slot: slot, Date: date, Member: m})
		if !d.Eligible {
			return false
		}
	}
	return true
}
