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
	"github.com/noah-isme/calendar-scolar-api/pkg/sanitize"
)

type countyRepository interface {
	List(ctx context.Context, filter models.CountyFilter) ([]models.County, error)
	GetBySlug(ctx context.Context, slug string) (*models.County, error)
	GetByID(ctx context.Context, id string) (*models.County, error)
	FindRefBySlug(ctx context.Context, slug string) (*models.CountyRef, error)
	Update(ctx context.Context, county *models.County) error
	SetActive(ctx context.Context, id string, active bool) error
}

type vacationRepository interface {
	ListGroups(ctx context.Context) ([]models.VacationGroupSummary, error)
	GetGroup(ctx context.Context, id string) (*models.VacationGroup, error)
	UpdateGroup(ctx context.Context, group *models.VacationGroup) error
	ListPeriodsByGroup(ctx context.Context, groupID, schoolYear string) ([]models.VacationPeriod, error)
	GetPeriod(ctx context.Context, id string) (*models.VacationPeriod, error)
	CreatePeriod(ctx context.Context, period *models.VacationPeriod) error
	UpdatePeriod(ctx context.Context, period *models.VacationPeriod) error
	DeletePeriod(ctx context.Context, id string) error
}

// UpdateCountyRequest edits a county. The slug is fixed at seed time.
type UpdateCountyRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	CapitalCity     *string `json:"capital_city" validate:"omitempty,max=100"`
	Population      *int    `json:"population" validate:"omitempty,min=0"`
	GroupID         string  `json:"group_id" validate:"required,uuid"`
	MetaTitle       *string `json:"meta_title" validate:"omitempty,max=200"`
	MetaDescription *string `json:"meta_description" validate:"omitempty,max=500"`
	Active          *bool   `json:"active"`
}

// UpdateGroupRequest edits a vacation group.
type UpdateGroupRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required,hexcolor_or_empty"`
}

// PeriodRequest creates or edits a vacation period.
type PeriodRequest struct {
	GroupID    string              `json:"group_id" validate:"required,uuid"`
	Name       string              `json:"name" validate:"required,max=200"`
	Type       models.VacationType `json:"type" validate:"required,vacation_type"`
	StartDate  time.Time           `json:"start_date" validate:"required"`
	EndDate    time.Time           `json:"end_date" validate:"required"`
	SchoolYear string              `json:"school_year" validate:"required,school_year"`
}

// CountyService manages counties, vacation groups and their periods.
type CountyService struct {
	counties   countyRepository
	vacations  vacationRepository
	cache      *CacheService
	cacheTTL   time.Duration
	schoolYear string
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCountyService constructs the service. schoolYear selects the periods shown with a county.
func NewCountyService(counties countyRepository, vacations vacationRepository, cache *CacheService, cacheTTL time.Duration, schoolYear string, validate *validator.Validate, logger *zap.Logger) *CountyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountyService{
		counties:   counties,
		vacations:  vacations,
		cache:      cache,
		cacheTTL:   cacheTTL,
		schoolYear: schoolYear,
		validator:  ensureValidator(validate),
		logger:     logger,
	}
}

// SchoolYear is the school year applied when callers do not pick one.
func (s *CountyService) SchoolYear() string {
	return s.schoolYear
}

// List returns counties matching the filter.
func (s *CountyService) List(ctx context.Context, filter models.CountyFilter) ([]models.County, error) {
	counties, err := s.counties.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list counties")
	}
	return counties, nil
}

// GetBySlug returns a county with its group and the periods of the configured school year.
func (s *CountyService) GetBySlug(ctx context.Context, slug string) (*models.CountyDetail, error) {
	if !sanitize.IsValidSlug(slug) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid county slug")
	}
	county, err := s.counties.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load county")
	}
	detail := &models.CountyDetail{County: *county, Periods: []models.VacationPeriod{}}

	group, err := s.vacations.GetGroup(ctx, county.GroupID)
	switch {
	case err == nil:
		detail.Group = group
	case errors.Is(err, sql.ErrNoRows):
		s.logger.Warn("county references missing vacation group", zap.String("county", slug), zap.String("group_id", county.GroupID))
		return detail, nil
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacation group")
	}

	periods, err := s.GroupPeriods(ctx, county.GroupID, "")
	if err != nil {
		return nil, err
	}
	detail.Periods = periods
	return detail, nil
}

// Ref returns the cached minimal lookup the feeds use.
func (s *CountyService) Ref(ctx context.Context, slug string) (*models.CountyRef, error) {
	if !sanitize.IsValidSlug(slug) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid county slug")
	}
	ref, err := Remember(ctx, s.cache, CountyCacheKey("ref:"+slug), s.cacheTTL, func(ctx context.Context) (*models.CountyRef, error) {
		return s.counties.FindRefBySlug(ctx, slug)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load county")
	}
	return ref, nil
}

// GroupPeriods returns a group's periods for schoolYear, or the configured year when empty.
func (s *CountyService) GroupPeriods(ctx context.Context, groupID, schoolYear string) ([]models.VacationPeriod, error) {
	if schoolYear == "" {
		schoolYear = s.schoolYear
	}
	key := CountyCacheKey("periods:" + groupID + ":" + schoolYear)
	periods, err := Remember(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) ([]models.VacationPeriod, error) {
		return s.vacations.ListPeriodsByGroup(ctx, groupID, schoolYear)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacation periods")
	}
	if periods == nil {
		periods = []models.VacationPeriod{}
	}
	return periods, nil
}

// Update edits a county.
func (s *CountyService) Update(ctx context.Context, id string, req UpdateCountyRequest) (*models.County, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid county payload")
	}
	county, err := s.counties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load county")
	}
	if _, err := s.loadGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}

	county.Name = req.Name
	county.CapitalCity = optionalText(req.CapitalCity)
	county.Population = req.Population
	county.GroupID = req.GroupID
	county.MetaTitle = optionalText(req.MetaTitle)
	county.MetaDescription = optionalText(req.MetaDescription)
	if req.Active != nil {
		county.Active = *req.Active
	}
	if err := s.counties.Update(ctx, county); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update county")
	}
	s.invalidate(ctx)
	return county, nil
}

// ToggleActive flips a county's active flag.
func (s *CountyService) ToggleActive(ctx context.Context, id string) (*models.County, error) {
	county, err := s.counties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load county")
	}
	if err := s.counties.SetActive(ctx, id, !county.Active); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle county")
	}
	county.Active = !county.Active
	s.invalidate(ctx)
	return county, nil
}

// ListGroups returns every vacation group with its county count.
func (s *CountyService) ListGroups(ctx context.Context) ([]models.VacationGroupSummary, error) {
	groups, err := s.vacations.ListGroups(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vacation groups")
	}
	return groups, nil
}

// GetGroup returns a vacation group.
func (s *CountyService) GetGroup(ctx context.Context, id string) (*models.VacationGroup, error) {
	return s.loadGroup(ctx, id)
}

// UpdateGroup renames or recolours a group.
func (s *CountyService) UpdateGroup(ctx context.Context, id string, req UpdateGroupRequest) (*models.VacationGroup, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid vacation group payload")
	}
	group, err := s.loadGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Name = req.Name
	group.Color = strings.ToUpper(req.Color)
	if err := s.vacations.UpdateGroup(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vacation group")
	}
	s.invalidate(ctx)
	return group, nil
}

// CreatePeriod adds a vacation period to a group.
func (s *CountyService) CreatePeriod(ctx context.Context, req PeriodRequest) (*models.VacationPeriod, error) {
	if err := s.validatePeriod(&req); err != nil {
		return nil, err
	}
	if _, err := s.loadGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}
	period := &models.VacationPeriod{}
	applyPeriod(period, req)
	if err := s.vacations.CreatePeriod(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vacation period")
	}
	s.invalidate(ctx)
	return period, nil
}

// UpdatePeriod edits a vacation period.
func (s *CountyService) UpdatePeriod(ctx context.Context, id string, req PeriodRequest) (*models.VacationPeriod, error) {
	if err := s.validatePeriod(&req); err != nil {
		return nil, err
	}
	period, err := s.vacations.GetPeriod(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacation period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacation period")
	}
	if period.GroupID != req.GroupID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a period cannot move between groups")
	}
	applyPeriod(period, req)
	if err := s.vacations.UpdatePeriod(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vacation period")
	}
	s.invalidate(ctx)
	return period, nil
}

// DeletePeriod removes a vacation period.
func (s *CountyService) DeletePeriod(ctx context.Context, id string) error {
	if err := s.vacations.DeletePeriod(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "vacation period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete vacation period")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CountyService) validatePeriod(req *PeriodRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid vacation period payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}
	return nil
}

func applyPeriod(period *models.VacationPeriod, req PeriodRequest) {
	period.GroupID = req.GroupID
	period.Name = req.Name
	period.Type = req.Type
	period.StartDate = req.StartDate.UTC()
	period.EndDate = req.EndDate.UTC()
	period.SchoolYear = req.SchoolYear
}

func (s *CountyService) loadGroup(ctx context.Context, id string) (*models.VacationGroup, error) {
	group, err := s.vacations.GetGroup(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacation group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacation group")
	}
	return group, nil
}

func (s *CountyService) invalidate(ctx context.Context) {
	_, _ = s.cache.Invalidate(ctx, CachePatternCounties)
}
