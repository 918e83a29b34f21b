package models

import (
	"time"

	"github.com/lib/pq"
)

// EventType mirrors the feed categories stored events may use.
type EventType string

const (
	EventVacation      EventType = "VACATION"
	EventHoliday       EventType = "HOLIDAY"
	EventSemesterStart EventType = "SEMESTER_START"
	EventSemesterEnd   EventType = "SEMESTER_END"
	EventLastDay       EventType = "LAST_DAY"
)

// Valid reports whether t may be stored on an event. Promotions live in their own table.
func (t EventType) Valid() bool {
	switch t {
	case EventVacation, EventHoliday, EventSemesterStart, EventSemesterEnd, EventLastDay:
		return true
	}
	return false
}

// Event is an official calendar entry. An empty CountyIDs list means it applies nationally.
type Event struct {
	ID              string         `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     *string        `db:"description" json:"description,omitempty"`
	Type            EventType      `db:"type" json:"type"`
	StartDate       time.Time      `db:"start_date" json:"start_date"`
	EndDate         *time.Time     `db:"end_date" json:"end_date,omitempty"`
	ImageURL        *string        `db:"image_url" json:"image_url,omitempty"`
	BackgroundColor *string        `db:"background_color" json:"background_color,omitempty"`
	Active          bool           `db:"active" json:"active"`
	CountyIDs       pq.StringArray `db:"county_ids" json:"county_ids"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// AppliesTo reports whether the event is national or targets countyID.
func (e Event) AppliesTo(countyID string) bool {
	if len(e.CountyIDs) == 0 {
		return true
	}
	for _, id := range e.CountyIDs {
		if id == countyID {
			return true
		}
	}
	return false
}

// EventFilter narrows admin listings.
type EventFilter struct {
	Type     *EventType
	Active   *bool
	From     *time.Time
	To       *time.Time
	CountyID string
	Search   string
	Page     int
	PageSize int
}
