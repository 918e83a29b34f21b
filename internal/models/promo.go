package models

import (
	"time"

	"github.com/lib/pq"
)

// Promo is a sponsored entry shown as a banner and optionally inside feeds.
// An empty CountyIDs list targets every county.
type Promo struct {
	ID              string         `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     *string        `db:"description" json:"description,omitempty"`
	ImageURL        *string        `db:"image_url" json:"image_url,omitempty"`
	Link            *string        `db:"link" json:"link,omitempty"`
	StartDate       time.Time      `db:"start_date" json:"start_date"`
	EndDate         time.Time      `db:"end_date" json:"end_date"`
	BackgroundColor *string        `db:"background_color" json:"background_color,omitempty"`
	ShowOnCalendar  bool           `db:"show_on_calendar" json:"show_on_calendar"`
	ShowAsBanner    bool           `db:"show_as_banner" json:"show_as_banner"`
	Active          bool           `db:"active" json:"active"`
	Priority        int            `db:"priority" json:"priority"`
	Impressions     int64          `db:"impressions" json:"impressions"`
	Clicks          int64          `db:"clicks" json:"clicks"`
	CountyIDs       pq.StringArray `db:"county_ids" json:"county_ids"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the promo runs at t.
func (p Promo) ActiveAt(t time.Time) bool {
	return p.Active && !t.Before(p.StartDate) && !t.After(p.EndDate)
}

// Targets reports whether the promo is shown for countyID.
func (p Promo) Targets(countyID string) bool {
	if len(p.CountyIDs) == 0 {
		return true
	}
	for _, id := range p.CountyIDs {
		if id == countyID {
			return true
		}
	}
	return false
}

// PromoFilter narrows admin listings.
type PromoFilter struct {
	Active   *bool
	Banner   *bool
	Calendar *bool
	Search   string
	Page     int
	PageSize int
}
