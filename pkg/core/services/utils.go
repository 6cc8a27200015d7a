package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/internal/config"
	"github.com/dmaguire/fairway-lottery/pkg/core/lottery"
	"github.com/dmaguire/fairway-lottery/pkg/core/lottery/rules"
	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// buildWindowConfig converts the site configuration into the engine's
// window configuration. Config times are already validated, so a parse
// failure here is a programming error and still surfaces as one.
func buildWindowConfig(cfg *config.Config) (lottery.WindowConfig, error) {
	open, err := config.ParseMinuteOfDay(cfg.OpenTime)
	if err != nil {
		return lottery.WindowConfig{}, fmt.Errorf("invalid openTime: %w", err)
	}
	close, err := config.ParseMinuteOfDay(cfg.CloseTime)
	if err != nil {
		return lottery.WindowConfig{}, fmt.Errorf("invalid closeTime: %w", err)
	}

	wc := lottery.WindowConfig{
		OpenMinute:  open,
		CloseMinute: close,
		BucketCount: cfg.WindowCount,
	}

	for _, w := range cfg.Windows {
		start, err := config.ParseMinuteOfDay(w.Start)
		if err != nil {
			return lottery.WindowConfig{}, fmt.Errorf("invalid start in window %q: %w", w.Label, err)
		}
		end, err := config.ParseMinuteOfDay(w.End)
		if err != nil {
			return lottery.WindowConfig{}, fmt.Errorf("invalid end in window %q: %w", w.Label, err)
		}
		wc.Buckets = append(wc.Buckets, lottery.TimeWindow{
			Label:       w.Label,
			StartMinute: start,
			EndMinute:   end,
		})
	}

	return wc, nil
}

// convertRules converts stored rule records into engine rules. A rule with
// an unknown category or a malformed day recurrence is a configuration
// error and fails the whole run rather than silently weakening the filter.
func convertRules(dbRules []db.Rule) ([]lottery.Rule, error) {
	converted := make([]lottery.Rule, 0, len(dbRules))

	for _, r := range dbRules {
		switch r.Category {
		case db.RuleCategoryTime:
			days, err := rules.WeekdaysFromRRule(r.DayRRule)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.ID, err)
			}
			converted = append(converted, &rules.TimeRule{
				RuleName:     r.Name,
				MemberClass:  r.MemberClass,
				StartMinute:  r.StartMinute,
				EndMinute:    r.EndMinute,
				Days:         days,
				From:         r.DateFrom,
				To:           r.DateTo,
				Active:       r.Active,
				RulePriority: r.Priority,
				CanOverride:  r.Overridable,
			})

		case db.RuleCategoryFrequency:
			converted = append(converted, &rules.FrequencyRule{
				RuleName:     r.Name,
				MemberClass:  r.MemberClass,
				MaxCount:     r.MaxCount,
				PeriodDays:   r.PeriodDays,
				Active:       r.Active,
				RulePriority: r.Priority,
				CanOverride:  r.Overridable,
			})

		case db.RuleCategoryAvailability:
			if r.DateFrom == nil || r.DateTo == nil {
				return nil, fmt.Errorf("availability rule %s has no date range", r.ID)
			}
			converted = append(converted, &rules.AvailabilityRule{
				RuleName:     r.Name,
				From:         *r.DateFrom,
				To:           *r.DateTo,
				Active:       r.Active,
				RulePriority: r.Priority,
				CanOverride:  r.Overridable,
			})

		default:
			return nil, fmt.Errorf("rule %s has unknown category %q", r.ID, r.Category)
		}
	}

	return converted, nil
}

// maxFrequencyPeriodDays returns the longest rolling window any frequency
// rule needs, so one bookings query can serve every rule.
func maxFrequencyPeriodDays(dbRules []db.Rule) int {
	max := 0
	for _, r := range dbRules {
		if r.Category == db.RuleCategoryFrequency && r.PeriodDays > max {
			max = r.PeriodDays
		}
	}
	return max
}

// convertRequests converts stored request records into engine requests and
// splits them into groups and individuals. A member ID that does not
// resolve to an active member yields a member with an empty ID, which the
// engine skips and reports rather than dropping silently here.
func convertRequests(
	dbRequests []db.Request,
	membersByID map[string]db.Member,
	logger *zap.Logger,
) (groups, individuals []*lottery.Request, byID map[string]*lottery.Request) {
	byID = make(map[string]*lottery.Request, len(dbRequests))

	for _, dbReq := range dbRequests {
		date, err := time.Parse("2006-01-02", dbReq.Date)
		if err != nil {
			logger.Warn("Request has malformed date, leaving pending",
				zap.String("request_id", dbReq.ID),
				zap.String("date", dbReq.Date))
			continue
		}

		memberIDs := organizerFirst(dbReq.OrganizerID, dbReq.MemberIDs)
		members := make([]lottery.Member, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			member, exists := membersByID[memberID]
			if !exists || !member.Active {
				logger.Warn("Request names unresolvable member",
					zap.String("request_id", dbReq.ID),
					zap.String("member_id", memberID))
				members = append(members, lottery.Member{})
				continue
			}
			members = append(members, lottery.Member{ID: member.ID, Class: member.Class})
		}

		req := &lottery.Request{
			ID:              dbReq.ID,
			Members:         members,
			Date:            date,
			PreferredWindow: dbReq.PreferredWindow,
			AlternateWindow: dbReq.AlternateWindow,
			SubmittedAt:     dbReq.SubmittedAt,
			Status:          lottery.Status(dbReq.Status),
			AssignedSlotID:  dbReq.AssignedSlotID,
		}

		byID[req.ID] = req
		if req.IsGroup() {
			groups = append(groups, req)
		} else {
			individuals = append(individuals, req)
		}
	}

	return groups, individuals, byID
}

// organizerFirst moves the request's organizer to the front of the member
// list. Fairness feedback credits the leading member, so ordering matters.
func organizerFirst(organizerID string, memberIDs []string) []string {
	if organizerID == "" {
		return memberIDs
	}
	for i, id := range memberIDs {
		if id != organizerID || i == 0 {
			continue
		}
		reordered := make([]string, 0, len(memberIDs))
		reordered = append(reordered, organizerID)
		reordered = append(reordered, memberIDs[:i]...)
		reordered = append(reordered, memberIDs[i+1:]...)
		return reordered
	}
	return memberIDs
}

// convertSlots converts stored slot records into the engine's mutable
// working copies.
func convertSlots(dbSlots []db.Slot) []*lottery.Slot {
	slots := make([]*lottery.Slot, len(dbSlots))
	for i, s := range dbSlots {
		slots[i] = &lottery.Slot{
			ID:          s.ID,
			StartMinute: s.StartMinute,
			Capacity:    s.Capacity,
			Remaining:   s.Remaining,
		}
	}
	return slots
}

// bookingsByMember groups confirmed bookings for the frequency rules'
// evaluation context.
func bookingsByMember(bookings []db.Booking) map[string][]time.Time {
	byMember := make(map[string][]time.Time)
	for _, b := range bookings {
		byMember[b.MemberID] = append(byMember[b.MemberID], b.Date)
	}
	return byMember
}

// fairnessRecordsByMember indexes the period's fairness records, converting
// to the engine's mutable record type.
func fairnessRecordsByMember(records []db.FairnessRecord) map[string]*lottery.FairnessRecord {
	byMember := make(map[string]*lottery.FairnessRecord, len(records))
	for _, r := range records {
		byMember[r.MemberID] = &lottery.FairnessRecord{
			MemberID:           r.MemberID,
			Period:             r.Period,
			TotalEntries:       r.TotalEntries,
			PreferencesGranted: r.PreferencesGranted,
			FulfillmentRate:    r.FulfillmentRate,
			MissStreak:         r.MissStreak,
			FairnessScore:      r.FairnessScore,
		}
	}
	return byMember
}

// speedProfilesByMember indexes pace-of-play profiles by member ID.
// Unknown tier strings are dropped so a bad import cannot inflate anyone's
// priority.
func speedProfilesByMember(profiles []db.SpeedProfile, logger *zap.Logger) map[string]*lottery.SpeedProfile {
	byMember := make(map[string]*lottery.SpeedProfile, len(profiles))
	for _, p := range profiles {
		tier := lottery.SpeedTier(p.Tier)
		switch tier {
		case lottery.SpeedFast, lottery.SpeedAverage, lottery.SpeedSlow:
		default:
			logger.Warn("Speed profile has unknown tier, ignoring",
				zap.String("member_id", p.MemberID),
				zap.String("tier", p.Tier))
			continue
		}
		byMember[p.MemberID] = &lottery.SpeedProfile{
			MemberID:        p.MemberID,
			Tier:            tier,
			AdminAdjustment: p.AdminAdjustment,
		}
	}
	return byMember
}

// membersByID indexes member records for request resolution.
func membersByID(members []db.Member) map[string]db.Member {
	byID := make(map[string]db.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	return byID
}
