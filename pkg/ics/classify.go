package ics

import "time"

// IsAllDay decides whether an item is rendered with VALUE=DATE.
//
// Vacations, holidays and promotions are always all-day. Other categories are
// all-day only when the start is midnight UTC and the end is absent, midnight,
// or 23:59 UTC.
func IsAllDay(category Category, start time.Time, end *time.Time) bool {
	switch category {
	case CategoryVacation, CategoryHoliday, CategoryPromo:
		return true
	}
	if !isMidnight(start) {
		return false
	}
	if end == nil {
		return true
	}
	return isMidnight(*end) || isEndOfDay(*end)
}

func isMidnight(t time.Time) bool {
	h, m, s := t.UTC().Clock()
	return h == 0 && m == 0 && s == 0
}

func isEndOfDay(t time.Time) bool {
	h, m, _ := t.UTC().Clock()
	return h == 23 && m == 59
}
