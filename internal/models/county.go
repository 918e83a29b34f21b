package models

import "time"

// County is one of the 42 Romanian administrative units (41 counties plus Bucharest).
type County struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Slug            string    `db:"slug" json:"slug"`
	CapitalCity     *string   `db:"capital_city" json:"capital_city,omitempty"`
	Population      *int      `db:"population" json:"population,omitempty"`
	GroupID         string    `db:"group_id" json:"group_id"`
	MetaTitle       *string   `db:"meta_title" json:"meta_title,omitempty"`
	MetaDescription *string   `db:"meta_description" json:"meta_description,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// CountyRef is the minimal county lookup used by feeds.
type CountyRef struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Slug    string `db:"slug" json:"slug"`
	GroupID string `db:"group_id" json:"group_id"`
	Active  bool   `db:"active" json:"active"`
}

// CountyFilter narrows county listings.
type CountyFilter struct {
	Active  *bool
	GroupID string
	Search  string
}

// CountyDetail is a county together with its vacation group and periods.
type CountyDetail struct {
	County
	Group   *VacationGroup   `json:"group,omitempty"`
	Periods []VacationPeriod `json:"periods"`
}

// VacationGroup clusters counties that share the intersemester vacation.
type VacationGroup struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VacationGroupSummary adds the county count to a group.
type VacationGroupSummary struct {
	VacationGroup
	CountyCount int `db:"county_count" json:"county_count"`
}

// VacationType classifies a vacation period.
type VacationType string

const (
	VacationIntersemester VacationType = "INTERSEMESTER"
	VacationWinter        VacationType = "WINTER"
	VacationSpring        VacationType = "SPRING"
	VacationSummer        VacationType = "SUMMER"
	VacationOther         VacationType = "OTHER"
)

// Valid reports whether t is a known vacation type.
func (t VacationType) Valid() bool {
	switch t {
	case VacationIntersemester, VacationWinter, VacationSpring, VacationSummer, VacationOther:
		return true
	}
	return false
}

// VacationPeriod is a group-specific vacation within a school year.
type VacationPeriod struct {
	ID         string       `db:"id" json:"id"`
	GroupID    string       `db:"group_id" json:"group_id"`
	Name       string       `db:"name" json:"name"`
	Type       VacationType `db:"type" json:"type"`
	StartDate  time.Time    `db:"start_date" json:"start_date"`
	EndDate    time.Time    `db:"end_date" json:"end_date"`
	SchoolYear string       `db:"school_year" json:"school_year"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}
