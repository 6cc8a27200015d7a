package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaguire/fairway-lottery/pkg/core/lottery"
)

func timeQuery(class string, startMinute int, date time.Time) lottery.EligibilityQuery {
	return lottery.EligibilityQuery{
		Slot:   lottery.Slot{ID: "slot-1", StartMinute: startMinute, Capacity: 4, Remaining: 4},
		Date:   date,
		Member: lottery.Member{ID: "alice", Class: class},
	}
}

var (
	aWednesday = time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	aSaturday  = time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC)
)

func TestTimeRule_BlocksMatchingClassInRange(t *testing.T) {
	rule := &TimeRule{
		RuleName:    "no juniors before noon",
		MemberClass: "JUNIOR",
		StartMinute: 6 * 60,
		EndMinute:   12 * 60,
		Active:      true,
	}

	assert.True(t, rule.Blocks(nil, timeQuery("JUNIOR", 8*60, aWednesday)))
	assert.False(t, rule.Blocks(nil, timeQuery("FULL", 8*60, aWednesday)), "other classes pass")
	assert.False(t, rule.Blocks(nil, timeQuery("JUNIOR", 14*60, aWednesday)), "outside minute range")
	assert.False(t, rule.Blocks(nil, timeQuery("JUNIOR", 12*60, aWednesday)), "end minute is exclusive")
}

func TestTimeRule_InactiveNeverBlocks(t *testing.T) {
	rule := &TimeRule{
		RuleName:    "no juniors before noon",
		MemberClass: "JUNIOR",
		StartMinute: 6 * 60,
		EndMinute:   12 * 60,
		Active:      false,
	}
	assert.False(t, rule.Blocks(nil, timeQuery("JUNIOR", 8*60, aWednesday)))
}

func TestTimeRule_DayOfWeekRestriction(t *testing.T) {
	rule := &TimeRule{
		RuleName:    "weekday mornings members only",
		MemberClass: "SOCIAL",
		StartMinute: 6 * 60,
		EndMinute:   12 * 60,
		Days: map[time.Weekday]bool{
			time.Monday: true, time.Tuesday: true, time.Wednesday: true,
			time.Thursday: true, time.Friday: true,
		},
		Active: true,
	}

	assert.True(t, rule.Blocks(nil, timeQuery("SOCIAL", 8*60, aWednesday)))
	assert.False(t, rule.Blocks(nil, timeQuery("SOCIAL", 8*60, aSaturday)))
}

func TestTimeRule_DateRange(t *testing.T) {
	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)
	rule := &TimeRule{
		RuleName:    "championship week",
		MemberClass: "SOCIAL",
		StartMinute: 0,
		EndMinute:   24 * 60,
		From:        &from,
		To:          &to,
		Active:      true,
	}

	assert.True(t, rule.Blocks(nil, timeQuery("SOCIAL", 8*60, aWednesday)))
	assert.False(t, rule.Blocks(nil, timeQuery("SOCIAL", 8*60, aSaturday)), "after the range ends")
}

func TestWeekdaysFromRRule(t *testing.T) {
	days, err := WeekdaysFromRRule("FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR")
	require.NoError(t, err)

	assert.True(t, days[time.Monday])
	assert.True(t, days[time.Wednesday])
	assert.True(t, days[time.Friday])
	assert.False(t, days[time.Saturday])
	assert.False(t, days[time.Sunday])
}

func TestWeekdaysFromRRule_SundayWrapsCorrectly(t *testing.T) {
	days, err := WeekdaysFromRRule("FREQ=WEEKLY;BYDAY=SA,SU")
	require.NoError(t, err)

	assert.True(t, days[time.Saturday])
	assert.True(t, days[time.Sunday])
	assert.Len(t, days, 2)
}

func TestWeekdaysFromRRule_EmptyMeansEveryDay(t *testing.T) {
	days, err := WeekdaysFromRRule("")
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestWeekdaysFromRRule_MalformedFails(t *testing.T) {
	_, err := WeekdaysFromRRule("not an rrule")
	assert.Error(t, err)
}
