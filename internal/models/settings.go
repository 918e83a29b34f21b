package models

import "time"

// SettingsID is the primary key of the singleton settings row.
const SettingsID = "settings"

// Settings holds site-wide options.
type Settings struct {
	ID                     string     `db:"id" json:"id"`
	CalendarName           string     `db:"calendar_name" json:"calendar_name"`
	SchoolYear             string     `db:"school_year" json:"school_year"`
	AdsEnabled             bool       `db:"ads_enabled" json:"ads_enabled"`
	ShowCalendarDayNumbers bool       `db:"show_calendar_day_numbers" json:"show_calendar_day_numbers"`
	MaintenanceMode        bool       `db:"maintenance_mode" json:"maintenance_mode"`
	MaintenanceMessage     *string    `db:"maintenance_message" json:"maintenance_message,omitempty"`
	LastCacheInvalidation  *time.Time `db:"last_cache_invalidation" json:"last_cache_invalidation,omitempty"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}
