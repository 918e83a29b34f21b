package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Upsert(ctx context.Context, settings *models.Settings) error
	TouchCacheInvalidation(ctx context.Context, at time.Time) error
}

// UpdateSettingsRequest edits the site-wide settings.
type UpdateSettingsRequest struct {
	CalendarName           string  `json:"calendar_name" validate:"required,max=100"`
	SchoolYear             string  `json:"school_year" validate:"required,school_year"`
	AdsEnabled             bool    `json:"ads_enabled"`
	ShowCalendarDayNumbers bool    `json:"show_calendar_day_numbers"`
	MaintenanceMode        bool    `json:"maintenance_mode"`
	MaintenanceMessage     *string `json:"maintenance_message" validate:"omitempty,max=500"`
}

// SettingsService reads and writes the singleton settings row.
type SettingsService struct {
	repo       settingsRepository
	cache      *CacheService
	cacheTTL   time.Duration
	schoolYear string
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewSettingsService constructs the service. schoolYear is the default used before the row exists.
func NewSettingsService(repo settingsRepository, cache *CacheService, cacheTTL time.Duration, schoolYear string, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		repo:       repo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		schoolYear: schoolYear,
		validator:  ensureValidator(validate),
		logger:     logger,
		now:        time.Now,
	}
}

// Defaults returns the settings used when none were stored.
func (s *SettingsService) Defaults() models.Settings {
	return models.Settings{
		ID:                     models.SettingsID,
		CalendarName:           ics.DefaultCalendarName,
		SchoolYear:             s.schoolYear,
		AdsEnabled:             true,
		ShowCalendarDayNumbers: true,
	}
}

// Get returns the stored settings, or the defaults when the row is missing.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := Remember(ctx, s.cache, CacheKeySettings, s.cacheTTL, func(ctx context.Context) (*models.Settings, error) {
		stored, err := s.repo.Get(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			defaults := s.Defaults()
			return &defaults, nil
		}
		return stored, err
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

// Update stores new settings.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*models.Settings, error) {
	req.CalendarName = strings.TrimSpace(req.CalendarName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid settings payload")
	}
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	updated := *current
	updated.CalendarName = req.CalendarName
	updated.SchoolYear = req.SchoolYear
	updated.AdsEnabled = req.AdsEnabled
	updated.ShowCalendarDayNumbers = req.ShowCalendarDayNumbers
	updated.MaintenanceMode = req.MaintenanceMode
	updated.MaintenanceMessage = optionalText(req.MaintenanceMessage)
	if err := s.repo.Upsert(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update settings")
	}
	_, _ = s.cache.Invalidate(ctx, CachePatternSettings)
	return &updated, nil
}

// InvalidateAllCaches drops every cached projection and records when it happened.
func (s *SettingsService) InvalidateAllCaches(ctx context.Context) (int, error) {
	removed, err := s.cache.Invalidate(ctx, CachePatternAll)
	if err != nil {
		return removed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate caches")
	}
	if err := s.repo.TouchCacheInvalidation(ctx, s.now()); err != nil {
		return removed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record cache invalidation")
	}
	s.logger.Info("caches invalidated", zap.Int("keys", removed))
	return removed, nil
}
