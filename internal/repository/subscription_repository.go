package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
)

// SubscriptionRepository persists feed subscriptions and subscribe button clicks.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs the repository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// UpsertAccess counts one feed fetch for the (county, client family) pair.
func (r *SubscriptionRepository) UpsertAccess(ctx context.Context, countyID, userAgent string, ip *string, at time.Time) error {
	const query = `INSERT INTO calendar_subscriptions (id, county_id, user_agent, ip_address, access_count, first_access, last_access)
VALUES ($1, $2, $3, $4, 1, $5, $5)
ON CONFLICT (county_id, user_agent)
DO UPDATE SET access_count = calendar_subscriptions.access_count + 1, last_access = EXCLUDED.last_access,
              ip_address = COALESCE(EXCLUDED.ip_address, calendar_subscriptions.ip_address)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), countyID, userAgent, ip, at.UTC()); err != nil {
		return fmt.Errorf("upsert subscription access: %w", err)
	}
	return nil
}

// CreateAction records a subscribe button click.
func (r *SubscriptionRepository) CreateAction(ctx context.Context, action *models.SubscriptionAction) error {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subscription_actions (id, county_id, action_type, user_agent, ip_address, created_at)
VALUES (:id, :county_id, :action_type, :user_agent, :ip_address, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, action); err != nil {
		return fmt.Errorf("create subscription action: %w", err)
	}
	return nil
}

// ListSubscriptions returns subscriptions, most recently accessed first.
func (r *SubscriptionRepository) ListSubscriptions(ctx context.Context, countyID string) ([]models.CalendarSubscription, error) {
	query := `SELECT id, county_id, user_agent, ip_address, access_count, first_access, last_access FROM calendar_subscriptions`
	args := []interface{}{}
	if countyID != "" {
		query += " WHERE county_id = $1"
		args = append(args, countyID)
	}
	query += " ORDER BY last_access DESC"
	var subs []models.CalendarSubscription
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// ListActions returns the newest actions, optionally since a point in time.
func (r *SubscriptionRepository) ListActions(ctx context.Context, since *time.Time, limit int) ([]models.SubscriptionAction, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query := `SELECT id, county_id, action_type, user_agent, ip_address, created_at FROM subscription_actions`
	args := []interface{}{}
	if since != nil {
		query += " WHERE created_at >= $1"
		args = append(args, since.UTC())
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)
	var actions []models.SubscriptionAction
	if err := r.db.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, fmt.Errorf("list subscription actions: %w", err)
	}
	return actions, nil
}

// StatsByCounty aggregates subscriptions and actions per county.
func (r *SubscriptionRepository) StatsByCounty(ctx context.Context) ([]models.CountySubscriptionStats, error) {
	const query = `SELECT c.id AS county_id, c.name AS county_name, c.slug AS county_slug,
COALESCE(s.clients, 0) AS clients, COALESCE(s.access_count, 0) AS access_count, COALESCE(a.actions, 0) AS actions
FROM counties c
LEFT JOIN (SELECT county_id, COUNT(*) AS clients, SUM(access_count) AS access_count FROM calendar_subscriptions GROUP BY county_id) s ON s.county_id = c.id
LEFT JOIN (SELECT county_id, COUNT(*) AS actions FROM subscription_actions GROUP BY county_id) a ON a.county_id = c.id
WHERE s.clients IS NOT NULL OR a.actions IS NOT NULL
ORDER BY access_count DESC, c.name ASC`
	var stats []models.CountySubscriptionStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("subscription stats by county: %w", err)
	}
	return stats, nil
}

// StatsByClient aggregates access counts per client family.
func (r *SubscriptionRepository) StatsByClient(ctx context.Context) ([]models.ClientStats, error) {
	const query = `SELECT user_agent, COUNT(*) AS clients, SUM(access_count) AS access_count
FROM calendar_subscriptions GROUP BY user_agent ORDER BY access_count DESC`
	var stats []models.ClientStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("subscription stats by client: %w", err)
	}
	return stats, nil
}

type actionCount struct {
	ActionType models.ActionType `db:"action_type"`
	Total      int64             `db:"total"`
}

// CountActions returns click totals per action type.
func (r *SubscriptionRepository) CountActions(ctx context.Context) (map[models.ActionType]int64, error) {
	const query = `SELECT action_type, COUNT(*) AS total FROM subscription_actions GROUP BY action_type`
	var rows []actionCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count subscription actions: %w", err)
	}
	result := make(map[models.ActionType]int64, len(rows))
	for _, row := range rows {
		result[row.ActionType] = row.Total
	}
	return result, nil
}
