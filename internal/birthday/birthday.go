// Package birthday contains the calendar arithmetic behind ages and birthday reminders.
// All functions are pure: "today" is always passed in by the caller.
package birthday

import (
	"fmt"
	"time"
)

// SafeDate returns the date year-month-day. An invalid day is corrected by decrementing it
// until the date exists, so February 30 becomes February 28 or 29. Should the day reach zero
// the first of the month is used. A month outside 1..12 cannot be corrected and yields false.
func SafeDate(year int, month int, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	for ; day > 0; day-- {
		if t, ok := exactDate(year, month, day, loc); ok {
			return t, true
		}
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc), true
}

// exactDate returns the date only if time.Date did not have to normalize it.
func exactDate(year int, month int, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// Today truncates now to midnight of its calendar day in now's location.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// NextOccurrence returns the nearest date on or after today that falls on the given month and
// day, corrected with SafeDate.
func NextOccurrence(today time.Time, month int, day int) (time.Time, bool) {
	today = Today(today)
	next, ok := SafeDate(today.Year(), month, day, today.Location())
	if !ok {
		return time.Time{}, false
	}
	if next.Before(today) {
		next, ok = SafeDate(today.Year()+1, month, day, today.Location())
	}
	return next, ok
}

// DaysUntil counts whole calendar days from one date to another. Both dates are compared by
// their calendar day only, so daylight saving shifts do not matter.
func DaysUntil(from time.Time, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// CalcAge returns the age in whole years on today's date. The second return value is false if
// any component is missing or the three values do not form a calendar date.
func CalcAge(today time.Time, day, month, year *int) (int, bool) {
	if day == nil || month == nil || year == nil || *day == 0 || *month == 0 || *year == 0 {
		return 0, false
	}
	if _, ok := exactDate(*year, *month, *day, time.UTC); !ok {
		return 0, false
	}
	age := today.Year() - *year
	if int(today.Month()) < *month || (int(today.Month()) == *month && today.Day() < *day) {
		age--
	}
	return age, true
}

// FormatDate renders a birthday as DD.MM or DD.MM.YYYY when the year is known.
func FormatDate(day int, month int, year *int) string {
	if year != nil && *year != 0 {
		return fmt.Sprintf("%02d.%02d.%d", day, month, *year)
	}
	return fmt.Sprintf("%02d.%02d", day, month)
}
