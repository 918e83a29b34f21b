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

const countyColumns = `id, name, slug, capital_city, population, group_id, meta_title, meta_description, active, created_at, updated_at`

// CountyRepository persists counties.
type CountyRepository struct {
	db *sqlx.DB
}

// NewCountyRepository constructs a county repository.
func NewCountyRepository(db *sqlx.DB) *CountyRepository {
	return &CountyRepository{db: db}
}

// List returns counties ordered by name.
func (r *CountyRepository) List(ctx context.Context, filter models.CountyFilter) ([]models.County, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.GroupID != "" {
		where = append(where, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR slug ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	query := fmt.Sprintf(`SELECT %s FROM counties WHERE %s ORDER BY name ASC`, countyColumns, strings.Join(where, " AND "))
	var counties []models.County
	if err := r.db.SelectContext(ctx, &counties, query, args...); err != nil {
		return nil, fmt.Errorf("list counties: %w", err)
	}
	return counties, nil
}

// GetBySlug fetches a county by slug.
func (r *CountyRepository) GetBySlug(ctx context.Context, slug string) (*models.County, error) {
	query := fmt.Sprintf(`SELECT %s FROM counties WHERE slug = $1`, countyColumns)
	var county models.County
	if err := r.db.GetContext(ctx, &county, query, slug); err != nil {
		return nil, err
	}
	return &county, nil
}

// GetByID fetches a county by id.
func (r *CountyRepository) GetByID(ctx context.Context, id string) (*models.County, error) {
	query := fmt.Sprintf(`SELECT %s FROM counties WHERE id = $1`, countyColumns)
	var county models.County
	if err := r.db.GetContext(ctx, &county, query, id); err != nil {
		return nil, err
	}
	return &county, nil
}

// FindRefBySlug returns the minimal lookup used by feeds.
func (r *CountyRepository) FindRefBySlug(ctx context.Context, slug string) (*models.CountyRef, error) {
	const query = `SELECT id, name, slug, group_id, active FROM counties WHERE slug = $1`
	var ref models.CountyRef
	if err := r.db.GetContext(ctx, &ref, query, slug); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Update modifies the editable county fields. The slug is immutable.
func (r *CountyRepository) Update(ctx context.Context, county *models.County) error {
	county.UpdatedAt = time.Now().UTC()
	const query = `UPDATE counties SET name = :name, capital_city = :capital_city, population = :population, group_id = :group_id,
meta_title = :meta_title, meta_description = :meta_description, active = :active, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, county)
	if err != nil {
		return fmt.Errorf("update county: %w", err)
	}
	return expectAffected(res)
}

// SetActive toggles the active flag.
func (r *CountyRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE counties SET active = $1, updated_at = $2 WHERE id = $3", active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("toggle county: %w", err)
	}
	return expectAffected(res)
}

// Upsert inserts or refreshes a county by slug. Used by seeding.
func (r *CountyRepository) Upsert(ctx context.Context, county *models.County) error {
	if county.ID == "" {
		county.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if county.CreatedAt.IsZero() {
		county.CreatedAt = now
	}
	county.UpdatedAt = now
	const query = `INSERT INTO counties (id, name, slug, capital_city, population, group_id, meta_title, meta_description, active, created_at, updated_at)
VALUES (:id, :name, :slug, :capital_city, :population, :group_id, :meta_title, :meta_description, :active, :created_at, :updated_at)
ON CONFLICT (slug)
DO UPDATE SET name = EXCLUDED.name, capital_city = EXCLUDED.capital_city, population = EXCLUDED.population,
              group_id = EXCLUDED.group_id, updated_at = EXCLUDED.updated_at
RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, county)
	if err != nil {
		return fmt.Errorf("upsert county: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&county.ID); err != nil {
			return fmt.Errorf("scan county id: %w", err)
		}
	}
	return rows.Err()
}
