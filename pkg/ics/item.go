package ics

import "time"

// Category classifies a calendar entry.
type Category string

const (
	CategoryVacation      Category = "VACATION"
	CategoryHoliday       Category = "HOLIDAY"
	CategorySemesterStart Category = "SEMESTER_START"
	CategorySemesterEnd   Category = "SEMESTER_END"
	CategoryLastDay       Category = "LAST_DAY"
	CategoryPromo         Category = "PROMO"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryVacation,
	CategoryHoliday,
	CategorySemesterStart,
	CategorySemesterEnd,
	CategoryLastDay,
	CategoryPromo,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CalendarItem is the normalized input of the generator. Callers project events,
// promotions and vacation periods into it before rendering.
type CalendarItem struct {
	ID           string
	Title        string
	Description  string
	StartDate    time.Time
	EndDate      *time.Time
	Category     Category
	ImageURL     string
	ExternalLink string
}
