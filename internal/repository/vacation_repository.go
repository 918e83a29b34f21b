package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
)

// VacationRepository persists vacation groups and their periods.
type VacationRepository struct {
	db *sqlx.DB
}

// NewVacationRepository constructs a vacation repository.
func NewVacationRepository(db *sqlx.DB) *VacationRepository {
	return &VacationRepository{db: db}
}

// ListGroups returns every group with its county count.
func (r *VacationRepository) ListGroups(ctx context.Context) ([]models.VacationGroupSummary, error) {
	const query = `SELECT g.id, g.name, g.color, g.created_at, g.updated_at, COUNT(c.id) AS county_count
FROM vacation_groups g LEFT JOIN counties c ON c.group_id = g.id
GROUP BY g.id ORDER BY g.name ASC`
	var groups []models.VacationGroupSummary
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list vacation groups: %w", err)
	}
	return groups, nil
}

// GetGroup fetches a group.
func (r *VacationRepository) GetGroup(ctx context.Context, id string) (*models.VacationGroup, error) {
	const query = `SELECT id, name, color, created_at, updated_at FROM vacation_groups WHERE id = $1`
	var group models.VacationGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup changes a group's name and color.
func (r *VacationRepository) UpdateGroup(ctx context.Context, group *models.VacationGroup) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE vacation_groups SET name = :name, color = :color, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, group)
	if err != nil {
		return fmt.Errorf("update vacation group: %w", err)
	}
	return expectAffected(res)
}

// UpsertGroup inserts or refreshes a group by name. Used by seeding.
func (r *VacationRepository) UpsertGroup(ctx context.Context, group *models.VacationGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	const query = `INSERT INTO vacation_groups (id, name, color, created_at, updated_at)
VALUES (:id, :name, :color, :created_at, :updated_at)
ON CONFLICT (name) DO UPDATE SET color = EXCLUDED.color, updated_at = EXCLUDED.updated_at
RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, group)
	if err != nil {
		return fmt.Errorf("upsert vacation group: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&group.ID); err != nil {
			return fmt.Errorf("scan vacation group id: %w", err)
		}
	}
	return rows.Err()
}

// ListPeriodsByGroup returns a group's periods for a school year. An empty year returns all.
func (r *VacationRepository) ListPeriodsByGroup(ctx context.Context, groupID, schoolYear string) ([]models.VacationPeriod, error) {
	query := `SELECT id, group_id, name, type, start_date, end_date, school_year, created_at, updated_at
FROM vacation_periods WHERE group_id = $1`
	args := []interface{}{groupID}
	if schoolYear != "" {
		query += " AND school_year = $2"
		args = append(args, schoolYear)
	}
	query += " ORDER BY start_date ASC"
	var periods []models.VacationPeriod
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, fmt.Errorf("list vacation periods: %w", err)
	}
	return periods, nil
}

// GetPeriod fetches a period.
func (r *VacationRepository) GetPeriod(ctx context.Context, id string) (*models.VacationPeriod, error) {
	const query = `SELECT id, group_id, name, type, start_date, end_date, school_year, created_at, updated_at
FROM vacation_periods WHERE id = $1`
	var period models.VacationPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// CreatePeriod inserts a period.
func (r *VacationRepository) CreatePeriod(ctx context.Context, period *models.VacationPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now
	const query = `INSERT INTO vacation_periods (id, group_id, name, type, start_date, end_date, school_year, created_at, updated_at)
VALUES (:id, :group_id, :name, :type, :start_date, :end_date, :school_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create vacation period: %w", err)
	}
	return nil
}

// UpdatePeriod modifies a period.
func (r *VacationRepository) UpdatePeriod(ctx context.Context, period *models.VacationPeriod) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `UPDATE vacation_periods SET name = :name, type = :type, start_date = :start_date, end_date = :end_date,
school_year = :school_year, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, period)
	if err != nil {
		return fmt.Errorf("update vacation period: %w", err)
	}
	return expectAffected(res)
}

// DeletePeriod removes a period.
func (r *VacationRepository) DeletePeriod(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM vacation_periods WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete vacation period: %w", err)
	}
	return expectAffected(res)
}

// DeletePeriodsByYear clears a group's periods for a school year. Used by seeding before re-import.
func (r *VacationRepository) DeletePeriodsByYear(ctx context.Context, groupID, schoolYear string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM vacation_periods WHERE group_id = $1 AND school_year = $2", groupID, schoolYear); err != nil {
		return fmt.Errorf("clear vacation periods: %w", err)
	}
	return nil
}
