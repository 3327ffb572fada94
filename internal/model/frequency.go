package model

import (
	"errors"
	"math"
	"strconv"
	"time"
)

var ErrInvalidFrequencyType = errors.New("model: invalid frequency type")

type FrequencyType string

const (
	FrequencyDaily           FrequencyType = "Daily"
	FrequencyWeekly          FrequencyType = "Weekly"
	FrequencyMultipleWeekly  FrequencyType = "Multiple times per week"
	FrequencyMonthly         FrequencyType = "Monthly"
	FrequencyMultipleMonthly FrequencyType = "Multiple times per month"
	FrequencyQuarterly       FrequencyType = "Quarterly"
	FrequencySemiAnnual      FrequencyType = "Semi-annual"
	FrequencyYearly          FrequencyType = "Yearly"
	FrequencyFlexible        FrequencyType = "Flexible"
)

func (f FrequencyType) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMultipleWeekly,
		FrequencyMonthly, FrequencyMultipleMonthly, FrequencyQuarterly,
		FrequencySemiAnnual, FrequencyYearly, FrequencyFlexible:
		return true
	default:
		return false
	}
}

// NextDueDate returns the date (midnight) a chore next comes due. A chore
// that has never been completed is due immediately. Time-of-day on last_done
// is ignored; only the calendar date feeds the schedule.
func (c Chore) NextDueDate(now time.Time) time.Time {
	if c.LastDone == nil {
		return DateOf(now)
	}
	last := DateOf(*c.LastDone)

	switch c.FrequencyType {
	case FrequencyDaily:
		return nextActiveDay(last.AddDate(0, 0, 1), c.ActiveDays, 8)
	case FrequencyWeekly:
		if c.Weekday >= 0 {
			return NextWeekday(c.Weekday, last)
		}
		return last.AddDate(0, 0, 7)
	case FrequencyMultipleWeekly:
		if c.ActiveDays != nil {
			return nextActiveDay(last.AddDate(0, 0, 1), c.ActiveDays, 8)
		}
		return last.AddDate(0, 0, intervalDays(7, c.FrequencyTimes))
	case FrequencyMonthly:
		if c.Monthday > 0 {
			return NextMonthday(c.Monthday, last)
		}
		return AddMonthsClamped(last, 1)
	case FrequencyMultipleMonthly:
		if c.ActiveMonthdays != nil {
			probe := last.AddDate(0, 0, 1)
			for i := 0; i < 31; i++ {
				if c.ActiveMonthdays[strconv.Itoa(probe.Day())] {
					return probe
				}
				probe = probe.AddDate(0, 0, 1)
			}
		}
		return last.AddDate(0, 0, intervalDays(30, c.FrequencyTimes))
	case FrequencyQuarterly:
		return AddMonthsClamped(last, 3)
	case FrequencySemiAnnual:
		return AddMonthsClamped(last, 6)
	case FrequencyYearly:
		if last.Month() == time.February && last.Day() == 29 {
			return time.Date(last.Year()+1, time.February, 28, 0, 0, 0, 0, last.Location())
		}
		return time.Date(last.Year()+1, last.Month(), last.Day(), 0, 0, 0, 0, last.Location())
	case FrequencyFlexible:
		return flexiblePeriodEnd(last, c.SubtasksPeriod)
	default:
		// Unrecognized types from older databases fall back to a plain
		// day interval rather than failing.
		days := c.FrequencyDays
		if days <= 0 {
			days = 7
		}
		return last.AddDate(0, 0, days)
	}
}

func (c Chore) IsDueToday(now time.Time) bool {
	if c.LastDone == nil {
		return true
	}
	return !c.NextDueDate(now).After(DateOf(now))
}

func (c Chore) IsOverdue(now time.Time) bool {
	if c.LastDone == nil {
		return true
	}
	return c.NextDueDate(now).Before(DateOf(now))
}

func (c Chore) CompletedToday(now time.Time) bool {
	return c.LastDone != nil && SameDay(*c.LastDone, now)
}

func (c Chore) IsActionable(now time.Time) bool {
	return c.IsDueToday(now) && !c.CompletedToday(now)
}

// DaysUntilDue is negative when the chore is overdue.
func (c Chore) DaysUntilDue(now time.Time) int {
	return DaysBetween(now, c.NextDueDate(now))
}

// ForceDueShiftDays returns how far last_done must be pushed into the past,
// beyond one extra day, to make a chore report as due. Long-cycle types use
// the plain frequency_days fallback so forcing them never backdates by a
// quarter or a year.
func (c Chore) ForceDueShiftDays() int {
	switch c.FrequencyType {
	case FrequencyDaily, FrequencyFlexible:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyMultipleWeekly:
		return 3
	case FrequencyMonthly:
		return 30
	default:
		if c.FrequencyDays > 0 {
			return c.FrequencyDays
		}
		return 7
	}
}

// nextActiveDay advances from start until the day-map allows the weekday.
// Absent entries count as active; the search is bounded so a fully inactive
// map cannot loop forever.
func nextActiveDay(start time.Time, activeDays map[string]bool, maxSteps int) time.Time {
	if activeDays == nil {
		return start
	}
	probe := start
	for i := 0; i < maxSteps; i++ {
		if active, ok := activeDays[DayName(probe)]; !ok || active {
			return probe
		}
		probe = probe.AddDate(0, 0, 1)
	}
	return probe
}

func intervalDays(span, times int) int {
	if times < 1 {
		times = 1
	}
	interval := int(math.Round(float64(span) / float64(times)))
	if interval < 1 {
		interval = 1
	}
	return interval
}

func flexiblePeriodEnd(last time.Time, period Period) time.Time {
	switch period {
	case PeriodWeek:
		return last.AddDate(0, 0, 6-WeekdayIndex(last))
	case PeriodMonth:
		y, m, _ := last.Date()
		return time.Date(y, m, DaysInMonth(y, m), 0, 0, 0, 0, last.Location())
	default:
		return last.AddDate(0, 0, 1)
	}
}
