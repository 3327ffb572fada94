package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Layouts accepted for stored instants, tried in order. Older databases mix
// ISO strings with and without zone offsets, space-separated datetimes, and
// bare dates.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var dayNames = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// ParseInstant parses a stored timestamp. It never fails: when no layout
// matches, it falls back to now and reports false so the caller can log.
func ParseInstant(s string, now time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return now, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return t, true
		}
	}
	// Malformed T-separated strings often still carry a usable date prefix.
	if len(raw) >= 10 && raw[4] == '-' && raw[7] == '-' {
		if t, err := time.ParseInLocation("2006-01-02", raw[:10], now.Location()); err == nil {
			return t, true
		}
	}
	return now, false
}

func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func DaysBetween(from, to time.Time) int {
	d := DateOf(to).Sub(DateOf(from))
	return int(d.Round(time.Hour).Hours() / 24)
}

func StartOfPeriod(period Period, now time.Time) time.Time {
	switch period {
	case PeriodWeek:
		return DateOf(now).AddDate(0, 0, -WeekdayIndex(now))
	case PeriodMonth:
		y, m, _ := now.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return DateOf(now)
	}
}

// WeekdayIndex maps time.Weekday onto a Monday=0..Sunday=6 index.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func DayName(t time.Time) string {
	return dayNames[WeekdayIndex(t)]
}

// NextWeekday returns the next occurrence of weekday (Monday=0) strictly
// after the given day. The same weekday rolls a full week ahead.
func NextWeekday(weekday int, after time.Time) time.Time {
	delta := ((weekday-WeekdayIndex(after))%7 + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return DateOf(after).AddDate(0, 0, delta)
}

// NextMonthday returns the next calendar occurrence of a day-of-month
// strictly after the given day, clamped to the target month's length.
func NextMonthday(monthday int, after time.Time) time.Time {
	y, m, _ := after.Date()
	if after.Day() >= monthday {
		if m == time.December {
			y++
			m = time.January
		} else {
			m++
		}
	}
	day := monthday
	if max := DaysInMonth(y, m); day > max {
		day = max
	}
	return time.Date(y, m, day, 0, 0, 0, 0, after.Location())
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped advances by whole calendar months, clamping the day to
// the target month's length instead of letting Jan 31 normalize into March.
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	y += total / 12
	m = time.Month(total%12 + 1)
	if max := DaysInMonth(y, m); d > max {
		d = max
	}
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DecodeDayMap decodes the JSON day-maps stored on a chore (active_days keyed
// by mon..sun, active_monthdays keyed by "1".."31"). Empty input and an empty
// object both decode to nil, so "{}" means "no restriction" rather than
// "restricted to nothing".
func DecodeDayMap(raw string) (map[string]bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	out := make(map[string]bool)
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func EncodeDayMap(m map[string]bool) string {
	if m == nil {
		return ""
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(raw)
}
