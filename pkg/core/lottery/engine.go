package lottery

import (
	"fmt"
	"sort"
	"time"
)

// AssignInput is everything one lottery pass needs, loaded in full before
// the pass begins. The engine is a pure function of this input plus the
// filter's rule set; it never touches external I/O.
type AssignInput struct {
	// Date the pass allocates for
	Date time.Time

	// Groups and Individuals are the pending requests, already split.
	// Priorities must be annotated (see Priority) before calling Assign.
	Groups      []*Request
	Individuals []*Request

	// Slots for the date with current remaining capacity. Mutated in
	// place as the run's in-memory working copy.
	Slots []*Slot

	// Windows resolved for this site (see ResolveWindows)
	Windows []TimeWindow

	// Filter carries the loaded eligibility rule set
	Filter *Filter

	// MaxPartySize caps group size; 0 disables the check
	MaxPartySize int
}

// AssignOutcome is the result of one pass.
type AssignOutcome struct {
	Assignments []Assignment
	Skipped     []SkippedRequest
	Summary     RunSummary
}

// candidateTier is one level of constraint relaxation: a named filter over
// the slot set. Tiers are tried in order and the first non-empty result
// wins, so each level stays independently testable.
type candidateTier struct {
	name           string
	policyFallback bool
	candidates     func(req *Request) []*Slot
}

type engine struct {
	in    AssignInput
	tiers []candidateTier
}

// Assign runs the lottery pass: all group requests in priority order, then
// all individual requests, each attempted exactly once against the
// cascading candidate tiers (preferred window, alternate window, any
// eligible slot, any slot at all). Requests that find no capacity anywhere
// stay PENDING for the next run; that is a soft outcome, not an error.
//
// Requests already ASSIGNED or CANCELLED are skipped untouched, which
// makes re-running a partially processed date safe.
func Assign(in AssignInput) (*AssignOutcome, error) {
	if len(in.Windows) == 0 {
		return nil, fmt.Errorf("no time windows resolved: refusing to run without window configuration")
	}
	if in.Filter == nil {
		in.Filter = NewFilter(nil, nil)
	}

	e := &engine{in: in}
	e.tiers = []candidateTier{
		{name: "preferred", candidates: e.preferredCandidates},
		{name: "alternate", candidates: e.alternateCandidates},
		{name: "any-eligible", candidates: e.eligibleCandidates},
		{name: "any-available", policyFallback: true, candidates: e.capacityCandidates},
	}

	outcome := &AssignOutcome{}
	outcome.Summary.TotalRequests = len(in.Groups) + len(in.Individuals)

	// Groups go first: a group needs N seats in one slot, strictly more
	// constrained than N independent placements, so groups are resolved
	// while slots are still empty to minimize fragmentation.
	sortRequests(in.Groups)
	sortRequests(in.Individuals)

	for _, req := range in.Groups {
		e.attempt(req, outcome)
	}
	for _, req := range in.Individuals {
		e.attempt(req, outcome)
	}

	return outcome, nil
}

// sortRequests orders by priority descending, ties broken by earliest
// submission, then by ID so runs stay deterministic.
func sortRequests(reqs []*Request) {
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].Priority != reqs[j].Priority {
			return reqs[i].Priority > reqs[j].Priority
		}
		if !reqs[i].SubmittedAt.Equal(reqs[j].SubmittedAt) {
			return reqs[i].SubmittedAt.Before(reqs[j].SubmittedAt)
		}
		return reqs[i].ID < reqs[j].ID
	})
}

// attempt makes the single placement attempt for one request. There is no
// retry pass and no reordering after a request is skipped.
func (e *engine) attempt(req *Request, outcome *AssignOutcome) {
	if reason, ok := e.skipReason(req); ok {
		outcome.Skipped = append(outcome.Skipped, SkippedRequest{RequestID: req.ID, Reason: reason})
		outcome.Summary.SkippedCount++
		return
	}

	outcome.Summary.ProcessedCount++

	for _, tier := range e.tiers {
		cands := tier.candidates(req)
		if len(cands) == 0 {
			continue
		}
		slot := pickSlot(cands)
		e.place(req, slot, tier, outcome)
		return
	}

	// Soft exhaustion: nothing had capacity. The request stays PENDING
	// and is picked up by the next run.
	outcome.Summary.PendingCount++
}

// skipReason reports why a request must not be attempted, if any.
func (e *engine) skipReason(req *Request) (string, bool) {
	switch req.Status {
	case StatusAssigned:
		return "already assigned in a previous run", true
	case StatusCancelled:
		return "cancelled", true
	case StatusPending:
	default:
		return fmt.Sprintf("unknown status %q", req.Status), true
	}

	if len(req.Members) == 0 {
		return "no resolvable members", true
	}
	for _, m := range req.Members {
		if m.ID == "" {
			return "member could not be resolved", true
		}
	}
	if e.in.MaxPartySize > 0 && req.Size() > e.in.MaxPartySize {
		return fmt.Sprintf("party of %d exceeds max party size %d", req.Size(), e.in.MaxPartySize), true
	}
	return "", false
}

// place commits the decision to the in-memory state and records the
// assignment. Capacity never goes negative: every tier already filtered
// on HasCapacity.
func (e *engine) place(req *Request, slot *Slot, tier candidateTier, outcome *AssignOutcome) {
	a := Assignment{
		RequestID:      req.ID,
		SlotID:         slot.ID,
		MemberIDs:      req.MemberIDs(),
		StartMinute:    slot.StartMinute,
		PolicyFallback: tier.policyFallback,
	}

	// When the placement landed outside both requested windows, or
	// ignored eligibility entirely, check whether a requested-window
	// slot with capacity was vetoed only by a rule. The feedback
	// updater must not penalize fairness for that. Evaluated before the
	// capacity decrement so the chosen slot itself still counts.
	if tier.policyFallback || !e.inRequestedWindow(req, slot.StartMinute) {
		a.RuleLimited = e.ruleDeniedRequestedWindow(req)
	}

	slot.Remaining -= req.Size()
	req.Status = StatusAssigned
	req.AssignedSlotID = slot.ID

	outcome.Assignments = append(outcome.Assignments, a)
	outcome.Summary.BookingsCreated++
	if tier.policyFallback {
		outcome.Summary.FallbackCount++
	}
}

// pickSlot chooses deterministically within a tier: earliest start time,
// ties broken by ID. The starter fills the sheet front to back.
func pickSlot(cands []*Slot) *Slot {
	best := cands[0]
	for _, s := range cands[1:] {
		if s.StartMinute < best.StartMinute ||
			(s.StartMinute == best.StartMinute && s.ID < best.ID) {
			best = s
		}
	}
	return best
}

// Candidate tiers, most to least constrained.

func (e *engine) preferredCandidates(req *Request) []*Slot {
	w, ok := windowByLabel(e.in.Windows, req.PreferredWindow)
	if !ok {
		return nil
	}
	return e.filterSlots(req, func(s *Slot) bool {
		return w.Contains(s.StartMinute) && e.in.Filter.GroupEligible(*s, e.in.Date, req.Members)
	})
}

func (e *engine) alternateCandidates(req *Request) []*Slot {
	w, ok := windowByLabel(e.in.Windows, req.AlternateWindow)
	if !ok {
		return nil
	}
	return e.filterSlots(req, func(s *Slot) bool {
		return w.Contains(s.StartMinute) && e.in.Filter.GroupEligible(*s, e.in.Date, req.Members)
	})
}

func (e *engine) eligibleCandidates(req *Request) []*Slot {
	return e.filterSlots(req, func(s *Slot) bool {
		return e.in.Filter.GroupEligible(*s, e.in.Date, req.Members)
	})
}

// capacityCandidates ignores eligibility entirely. Deliberate policy: the
// business prefers an over-placed golfer to an unplaced one, so the last
// tier considers every slot with room and the placement is marked as a
// policy fallback.
func (e *engine) capacityCandidates(req *Request) []*Slot {
	return e.filterSlots(req, func(s *Slot) bool { return true })
}

func (e *engine) filterSlots(req *Request, keep func(*Slot) bool) []*Slot {
	var out []*Slot
	for _, s := range e.in.Slots {
		if !s.HasCapacity(req.Size()) {
			continue
		}
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// inRequestedWindow reports whether the start minute falls in the
// request's preferred or alternate window.
func (e *engine) inRequestedWindow(req *Request, startMinute int) bool {
	if w, ok := windowByLabel(e.in.Windows, req.PreferredWindow); ok && w.Contains(startMinute) {
		return true
	}
	if w, ok := windowByLabel(e.in.Windows, req.AlternateWindow); ok && w.Contains(startMinute) {
		return true
	}
	return false
}

// ruleDeniedRequestedWindow reports whether some slot in the request's
// preferred or alternate window had capacity for the whole party but was
// blocked by an eligibility rule. That makes the rule, not demand, the
// load-bearing cause of the preference miss.
func (e *engine) ruleDeniedRequestedWindow(req *Request) bool {
	for _, s := range e.in.Slots {
		if !s.HasCapacity(req.Size()) {
			continue
		}
		if !e.inRequestedWindow(req, s.StartMinute) {
			continue
		}
		if !e.in.Filter.GroupEligible(*s, e.in.Date, req.Members) {
			return true
		}
	}
	return false
}
