package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
)

// SettingsRepository persists the singleton settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row. sql.ErrNoRows means it was never written.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	const query = `SELECT id, calendar_name, school_year, ads_enabled, show_calendar_day_numbers, maintenance_mode, maintenance_message,
last_cache_invalidation, updated_at FROM settings WHERE id = $1`
	var settings models.Settings
	if err := r.db.GetContext(ctx, &settings, query, models.SettingsID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert writes the settings row.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO settings (id, calendar_name, school_year, ads_enabled, show_calendar_day_numbers, maintenance_mode, maintenance_message, updated_at)
VALUES (:id, :calendar_name, :school_year, :ads_enabled, :show_calendar_day_numbers, :maintenance_mode, :maintenance_message, :updated_at)
ON CONFLICT (id)
DO UPDATE SET calendar_name = EXCLUDED.calendar_name, school_year = EXCLUDED.school_year, ads_enabled = EXCLUDED.ads_enabled,
              show_calendar_day_numbers = EXCLUDED.show_calendar_day_numbers, maintenance_mode = EXCLUDED.maintenance_mode,
              maintenance_message = EXCLUDED.maintenance_message, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// TouchCacheInvalidation records when caches were last flushed.
func (r *SettingsRepository) TouchCacheInvalidation(ctx context.Context, at time.Time) error {
	const query = `INSERT INTO settings (id, last_cache_invalidation, updated_at) VALUES ($1, $2, $2)
ON CONFLICT (id) DO UPDATE SET last_cache_invalidation = EXCLUDED.last_cache_invalidation, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, models.SettingsID, at.UTC()); err != nil {
		return fmt.Errorf("touch cache invalidation: %w", err)
	}
	return nil
}
