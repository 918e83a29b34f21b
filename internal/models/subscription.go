package models

import "time"

// CalendarSubscription counts feed fetches per county and calendar client family.
type CalendarSubscription struct {
	ID          string    `db:"id" json:"id"`
	CountyID    string    `db:"county_id" json:"county_id"`
	UserAgent   string    `db:"user_agent" json:"user_agent"`
	IPAddress   *string   `db:"ip_address" json:"ip_address,omitempty"`
	AccessCount int64     `db:"access_count" json:"access_count"`
	FirstAccess time.Time `db:"first_access" json:"first_access"`
	LastAccess  time.Time `db:"last_access" json:"last_access"`
}

// ActionType is the subscribe button a visitor pressed.
type ActionType string

const (
	ActionGoogle  ActionType = "google"
	ActionApple   ActionType = "apple"
	ActionOutlook ActionType = "outlook"
	ActionCopyURL ActionType = "copy_url"
)

// Valid reports whether a is a known action.
func (a ActionType) Valid() bool {
	switch a {
	case ActionGoogle, ActionApple, ActionOutlook, ActionCopyURL:
		return true
	}
	return false
}

// SubscriptionAction records a subscribe button click.
type SubscriptionAction struct {
	ID         string     `db:"id" json:"id"`
	CountyID   string     `db:"county_id" json:"county_id"`
	ActionType ActionType `db:"action_type" json:"action_type"`
	UserAgent  *string    `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress  *string    `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// CountySubscriptionStats aggregates subscriptions for one county.
type CountySubscriptionStats struct {
	CountyID    string `db:"county_id" json:"county_id"`
	CountyName  string `db:"county_name" json:"county_name"`
	CountySlug  string `db:"county_slug" json:"county_slug"`
	Clients     int    `db:"clients" json:"clients"`
	AccessCount int64  `db:"access_count" json:"access_count"`
	Actions     int64  `db:"actions" json:"actions"`
}

// ClientStats aggregates access counts per client family.
type ClientStats struct {
	UserAgent   string `db:"user_agent" json:"user_agent"`
	Clients     int    `db:"clients" json:"clients"`
	AccessCount int64  `db:"access_count" json:"access_count"`
}

// SubscriptionStats is the admin subscribers overview.
type SubscriptionStats struct {
	TotalSubscriptions int                       `json:"total_subscriptions"`
	TotalAccesses      int64                     `json:"total_accesses"`
	TotalActions       int64                     `json:"total_actions"`
	UniqueCounties     int                       `json:"unique_counties"`
	ByCounty           []CountySubscriptionStats `json:"by_county"`
	ByClient           []ClientStats             `json:"by_client"`
	ByAction           map[ActionType]int64      `json:"by_action"`
}
