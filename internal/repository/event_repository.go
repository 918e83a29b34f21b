package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
)

const eventColumns = `e.id, e.title, e.description, e.type, e.start_date, e.end_date, e.image_url, e.background_color, e.active, e.created_at, e.updated_at,
ARRAY(SELECT ec.county_id::text FROM event_counties ec WHERE ec.event_id = e.id ORDER BY ec.county_id) AS county_ids`

// EventRepository persists official calendar events and their county targeting.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching filters.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	base := "FROM events e"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Type != nil {
		where = append(where, fmt.Sprintf("e.type = $%d", len(args)+1))
		args = append(args, string(*filter.Type))
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("e.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("COALESCE(e.end_date, e.start_date) >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("e.start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.CountyID != "" {
		where = append(where, fmt.Sprintf(`(NOT EXISTS (SELECT 1 FROM event_counties x WHERE x.event_id = e.id)
OR EXISTS (SELECT 1 FROM event_counties x WHERE x.event_id = e.id AND x.county_id = $%d))`, len(args)+1))
		args = append(args, filter.CountyID)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("e.title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
%s WHERE %s ORDER BY e.start_date ASC, e.created_at ASC LIMIT %d OFFSET %d`, eventColumns, base, whereClause, size, offset)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// ListActive returns every active event ordered by start date, as consumed by feeds.
func (r *EventRepository) ListActive(ctx context.Context) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s
FROM events e WHERE e.active = TRUE ORDER BY e.start_date ASC, e.created_at ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	return events, nil
}

// GetByID fetches an event.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events e WHERE e.id = $1`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts an event and its county links in one transaction.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create event tx: %w", err)
	}
	const query = `INSERT INTO events (id, title, description, type, start_date, end_date, image_url, background_color, active, created_at, updated_at)
VALUES (:id, :title, :description, :type, :start_date, :end_date, :image_url, :background_color, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, event); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create event: %w", err)
	}
	if err := replaceLinks(ctx, tx, "event_counties", "event_id", event.ID, event.CountyIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create event tx: %w", err)
	}
	return nil
}

// Update modifies an event and replaces its county links.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update event tx: %w", err)
	}
	const query = `UPDATE events SET title = :title, description = :description, type = :type, start_date = :start_date, end_date = :end_date,
image_url = :image_url, background_color = :background_color, active = :active, updated_at = :updated_at
WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, event); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update event: %w", err)
	}
	if err := replaceLinks(ctx, tx, "event_counties", "event_id", event.ID, event.CountyIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update event tx: %w", err)
	}
	return nil
}

// Upsert inserts an event or overwrites the one sharing its ID. Used by seeding.
func (r *EventRepository) Upsert(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert event tx: %w", err)
	}
	const query = `INSERT INTO events (id, title, description, type, start_date, end_date, image_url, background_color, active, created_at, updated_at)
VALUES (:id, :title, :description, :type, :start_date, :end_date, :image_url, :background_color, :active, :created_at, :updated_at)
ON CONFLICT (id)
DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description, type = EXCLUDED.type, start_date = EXCLUDED.start_date,
              end_date = EXCLUDED.end_date, updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, query, event); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert event: %w", err)
	}
	if err := replaceLinks(ctx, tx, "event_counties", "event_id", event.ID, event.CountyIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert event tx: %w", err)
	}
	return nil
}

// SetActive toggles the active flag.
func (r *EventRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE events SET active = $1, updated_at = $2 WHERE id = $3", active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("toggle event: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an event. County links cascade.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return expectAffected(res)
}

// replaceLinks rewrites the county join rows of one owner.
func replaceLinks(ctx context.Context, tx *sqlx.Tx, table, ownerColumn, ownerID string, countyIDs []string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, ownerColumn), ownerID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(countyIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf("INSERT INTO %s (%s, county_id) SELECT $1, unnest($2::uuid[]) ON CONFLICT DO NOTHING", table, ownerColumn)
	if _, err := tx.ExecContext(ctx, query, ownerID, pq.Array(countyIDs)); err != nil {
		return fmt.Errorf("link %s: %w", table, err)
	}
	return nil
}
