package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/sanitize"
)

// promoCacheTTL bounds staleness of the active promo projection between scheduled refreshes.
const promoCacheTTL = 5 * time.Minute

type promoRepository interface {
	List(ctx context.Context, filter models.PromoFilter) ([]models.Promo, int, error)
	ListActiveAt(ctx context.Context, now time.Time) ([]models.Promo, error)
	GetByID(ctx context.Context, id string) (*models.Promo, error)
	Create(ctx context.Context, promo *models.Promo) error
	Update(ctx context.Context, promo *models.Promo) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	IncrementClicks(ctx context.Context, id string) error
}

// PromoRequest is the create and update payload for promotions.
type PromoRequest struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Description     *string    `json:"description" validate:"omitempty,max=5000"`
	ImageURL        *string    `json:"image_url" validate:"omitempty,max=500,http_url"`
	Link            *string    `json:"link" validate:"omitempty,max=500,http_url"`
	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         *time.Time `json:"end_date" validate:"required"`
	BackgroundColor *string    `json:"background_color" validate:"omitempty,hexcolor_or_empty"`
	ShowOnCalendar  bool       `json:"show_on_calendar"`
	ShowAsBanner    bool       `json:"show_as_banner"`
	Active          *bool      `json:"active"`
	Priority        int        `json:"priority" validate:"min=0,max=100"`
	CountyIDs       []string   `json:"county_ids" validate:"omitempty,dive,uuid"`
}

// PromoService manages promotions and their active projection.
type PromoService struct {
	repo      promoRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPromoService constructs the service.
func NewPromoService(repo promoRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PromoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromoService{repo: repo, cache: cache, validator: ensureValidator(validate), logger: logger, now: time.Now}
}

// List returns paginated promos.
func (s *PromoService) List(ctx context.Context, filter models.PromoFilter) ([]models.Promo, *models.Pagination, error) {
	promos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list promos")
	}
	return promos, paginationFor(filter.Page, filter.PageSize, total), nil
}

// ActivePromos returns promos running now, ordered by priority. The cached projection is
// re-filtered against the clock so a stale entry never resurrects an expired promo.
func (s *PromoService) ActivePromos(ctx context.Context) ([]models.Promo, error) {
	now := s.now()
	promos, err := Remember(ctx, s.cache, CacheKeyActivePromos, promoCacheTTL, func(ctx context.Context) ([]models.Promo, error) {
		return s.repo.ListActiveAt(ctx, now)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active promos")
	}
	return lo.Filter(promos, func(p models.Promo, _ int) bool { return p.ActiveAt(now) }), nil
}

// RefreshActive reloads the active projection into the cache. It runs on a schedule.
func (s *PromoService) RefreshActive(ctx context.Context) error {
	promos, err := s.repo.ListActiveAt(ctx, s.now())
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, CacheKeyActivePromos, promos, promoCacheTTL)
}

// Banners returns active banner promos targeting countyID. An empty id keeps only untargeted promos.
func (s *PromoService) Banners(ctx context.Context, countyID string) ([]models.Promo, error) {
	promos, err := s.ActivePromos(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(promos, func(p models.Promo, _ int) bool {
		if !p.ShowAsBanner {
			return false
		}
		if countyID == "" {
			return len(p.CountyIDs) == 0
		}
		return p.Targets(countyID)
	}), nil
}

// Get returns a promo by id.
func (s *PromoService) Get(ctx context.Context, id string) (*models.Promo, error) {
	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "promo not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promo")
	}
	return promo, nil
}

// Create stores a new promo.
func (s *PromoService) Create(ctx context.Context, req PromoRequest) (*models.Promo, error) {
	promo := &models.Promo{Active: true}
	if err := s.apply(promo, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create promo")
	}
	s.invalidate(ctx)
	s.logger.Info("promo created", zap.String("promo_id", promo.ID))
	return promo, nil
}

// Update replaces a promo's fields and county targeting.
func (s *PromoService) Update(ctx context.Context, id string, req PromoRequest) (*models.Promo, error) {
	promo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(promo, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update promo")
	}
	s.invalidate(ctx)
	return promo, nil
}

// ToggleActive flips the active flag and returns the updated promo.
func (s *PromoService) ToggleActive(ctx context.Context, id string) (*models.Promo, error) {
	promo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !promo.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "promo not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle promo")
	}
	promo.Active = !promo.Active
	s.invalidate(ctx)
	return promo, nil
}

// Delete removes a promo.
func (s *PromoService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "promo not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete promo")
	}
	s.invalidate(ctx)
	s.logger.Info("promo deleted", zap.String("promo_id", id))
	return nil
}

// TrackClick counts a banner click. It returns the promo link so callers can redirect.
func (s *PromoService) TrackClick(ctx context.Context, id string) (string, error) {
	if err := s.repo.IncrementClicks(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "promo not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to track click")
	}
	promo, err := s.Get(ctx, id)
	if err != nil || promo.Link == nil {
		return "", nil
	}
	link, _ := sanitize.SanitizeURL(*promo.Link)
	return link, nil
}

func (s *PromoService) apply(promo *models.Promo, req PromoRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.CountyIDs = uniqueIDs(req.CountyIDs)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid promo payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}

	promo.Title = req.Title
	promo.StartDate = req.StartDate.UTC()
	promo.EndDate = req.EndDate.UTC()
	promo.Description = nil
	if desc := optionalText(req.Description); desc != nil {
		cleaned := sanitize.SanitizeHTML(*desc)
		promo.Description = &cleaned
	}
	promo.ImageURL = optionalText(req.ImageURL)
	promo.Link = optionalText(req.Link)
	promo.BackgroundColor = optionalText(req.BackgroundColor)
	promo.ShowOnCalendar = req.ShowOnCalendar
	promo.ShowAsBanner = req.ShowAsBanner
	promo.Priority = req.Priority
	if req.Active != nil {
		promo.Active = *req.Active
	}
	promo.CountyIDs = req.CountyIDs
	return nil
}

func (s *PromoService) invalidate(ctx context.Context) {
	_, _ = s.cache.Invalidate(ctx, CachePatternPromos)
}
