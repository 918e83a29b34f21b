package service

import (
	"github.com/samber/lo"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
)

// ProjectEvent maps a stored event to a calendar item.
func ProjectEvent(e models.Event) ics.CalendarItem {
	return ics.CalendarItem{
		ID:          e.ID,
		Title:       e.Title,
		Description: lo.FromPtr(e.Description),
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Category:    ics.Category(e.Type),
		ImageURL:    lo.FromPtr(e.ImageURL),
	}
}

// ProjectPromo maps a promo to a PROMO calendar item.
func ProjectPromo(p models.Promo) ics.CalendarItem {
	end := p.EndDate
	return ics.CalendarItem{
		ID:           p.ID,
		Title:        p.Title,
		Description:  lo.FromPtr(p.Description),
		StartDate:    p.StartDate,
		EndDate:      &end,
		Category:     ics.CategoryPromo,
		ImageURL:     lo.FromPtr(p.ImageURL),
		ExternalLink: lo.FromPtr(p.Link),
	}
}

// ProjectPeriod maps a group vacation period to a VACATION item. The id is prefixed so it
// never collides with an event id in the same feed.
func ProjectPeriod(p models.VacationPeriod) ics.CalendarItem {
	end := p.EndDate
	return ics.CalendarItem{
		ID:        "period-" + p.ID,
		Title:     p.Name,
		StartDate: p.StartDate,
		EndDate:   &end,
		Category:  ics.CategoryVacation,
	}
}
