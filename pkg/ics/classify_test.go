package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsAllDay(t *testing.T) {
	midnight := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	nextMidnight := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	endOfDay := time.Date(2026, 1, 16, 23, 59, 59, 0, time.UTC)
	afternoon := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
	localMidnight := time.Date(2026, 1, 15, 0, 0, 0, 0, time.FixedZone("EET", 2*60*60))

	tests := []struct {
		name     string
		category Category
		start    time.Time
		end      *time.Time
		want     bool
	}{
		{name: "vacation timed", category: CategoryVacation, start: afternoon, want: true},
		{name: "holiday timed", category: CategoryHoliday, start: afternoon, end: &endOfDay, want: true},
		{name: "promo timed", category: CategoryPromo, start: afternoon, want: true},
		{name: "midnight no end", category: CategorySemesterStart, start: midnight, want: true},
		{name: "midnight to midnight", category: CategorySemesterEnd, start: midnight, end: &nextMidnight, want: true},
		{name: "midnight to 23:59", category: CategoryLastDay, start: midnight, end: &endOfDay, want: true},
		{name: "midnight to afternoon", category: CategoryLastDay, start: midnight, end: &afternoon, want: false},
		{name: "afternoon start", category: CategorySemesterStart, start: afternoon, want: false},
		{name: "local midnight is not utc midnight", category: CategorySemesterStart, start: localMidnight, want: false},
		{name: "unknown category uses time rule", category: Category("OTHER"), start: midnight, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllDay(tt.category, tt.start, tt.end))
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid())
	}
	assert.False(t, Category("MEETING").Valid())
	assert.False(t, Category("").Valid())
}
