package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
)

const promoColumns = `p.id, p.title, p.description, p.image_url, p.link, p.start_date, p.end_date, p.background_color,
p.show_on_calendar, p.show_as_banner, p.active, p.priority, p.impressions, p.clicks, p.created_at, p.updated_at,
ARRAY(SELECT pc.county_id::text FROM promo_counties pc WHERE pc.promo_id = p.id ORDER BY pc.county_id) AS county_ids`

// PromoRepository persists promotions.
type PromoRepository struct {
	db *sqlx.DB
}

// NewPromoRepository constructs a promo repository.
func NewPromoRepository(db *sqlx.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

// List returns promos matching filters, highest priority first.
func (r *PromoRepository) List(ctx context.Context, filter models.PromoFilter) ([]models.Promo, int, error) {
	base := "FROM promos p"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("p.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Banner != nil {
		where = append(where, fmt.Sprintf("p.show_as_banner = $%d", len(args)+1))
		args = append(args, *filter.Banner)
	}
	if filter.Calendar != nil {
		where = append(where, fmt.Sprintf("p.show_on_calendar = $%d", len(args)+1))
		args = append(args, *filter.Calendar)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("p.title ILIKE $%d", len(args)+1))
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
%s WHERE %s ORDER BY p.priority DESC, p.start_date ASC LIMIT %d OFFSET %d`, promoColumns, base, whereClause, size, offset)
	var promos []models.Promo
	if err := r.db.SelectContext(ctx, &promos, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list promos: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count promos: %w", err)
	}
	return promos, total, nil
}

// ListActiveAt returns promos running at now, by priority then start date.
func (r *PromoRepository) ListActiveAt(ctx context.Context, now time.Time) ([]models.Promo, error) {
	query := fmt.Sprintf(`SELECT %s
FROM promos p WHERE p.active = TRUE AND p.start_date <= $1 AND p.end_date >= $1
ORDER BY p.priority DESC, p.start_date ASC`, promoColumns)
	var promos []models.Promo
	if err := r.db.SelectContext(ctx, &promos, query, now.UTC()); err != nil {
		return nil, fmt.Errorf("list active promos: %w", err)
	}
	return promos, nil
}

// GetByID fetches a promo.
func (r *PromoRepository) GetByID(ctx context.Context, id string) (*models.Promo, error) {
	query := fmt.Sprintf(`SELECT %s FROM promos p WHERE p.id = $1`, promoColumns)
	var promo models.Promo
	if err := r.db.GetContext(ctx, &promo, query, id); err != nil {
		return nil, err
	}
	return &promo, nil
}

// Create inserts a promo and its county links.
func (r *PromoRepository) Create(ctx context.Context, promo *models.Promo) error {
	if promo.ID == "" {
		promo.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if promo.CreatedAt.IsZero() {
		promo.CreatedAt = now
	}
	promo.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create promo tx: %w", err)
	}
	const query = `INSERT INTO promos (id, title, description, image_url, link, start_date, end_date, background_color, show_on_calendar, show_as_banner, active, priority, created_at, updated_at)
VALUES (:id, :title, :description, :image_url, :link, :start_date, :end_date, :background_color, :show_on_calendar, :show_as_banner, :active, :priority, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, promo); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create promo: %w", err)
	}
	if err := replaceLinks(ctx, tx, "promo_counties", "promo_id", promo.ID, promo.CountyIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create promo tx: %w", err)
	}
	return nil
}

// Update modifies a promo and replaces its county links. Counters are left untouched.
func (r *PromoRepository) Update(ctx context.Context, promo *models.Promo) error {
	promo.UpdatedAt = time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update promo tx: %w", err)
	}
	const query = `UPDATE promos SET title = :title, description = :description, image_url = :image_url, link = :link, start_date = :start_date,
end_date = :end_date, background_color = :background_color, show_on_calendar = :show_on_calendar, show_as_banner = :show_as_banner,
active = :active, priority = :priority, updated_at = :updated_at
WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, promo); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update promo: %w", err)
	}
	if err := replaceLinks(ctx, tx, "promo_counties", "promo_id", promo.ID, promo.CountyIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update promo tx: %w", err)
	}
	return nil
}

// SetActive toggles the active flag.
func (r *PromoRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE promos SET active = $1, updated_at = $2 WHERE id = $3", active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("toggle promo: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a promo.
func (r *PromoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM promos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete promo: %w", err)
	}
	return expectAffected(res)
}

// IncrementImpressions adds n impressions to a promo.
func (r *PromoRepository) IncrementImpressions(ctx context.Context, id string, n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE promos SET impressions = impressions + $1 WHERE id = $2", n, id); err != nil {
		return fmt.Errorf("increment promo impressions: %w", err)
	}
	return nil
}

// IncrementClicks adds one click to a promo.
func (r *PromoRepository) IncrementClicks(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE promos SET clicks = clicks + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("increment promo clicks: %w", err)
	}
	return expectAffected(res)
}
