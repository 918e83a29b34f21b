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

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	ListActive(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// EventRequest is the create and update payload for official events.
type EventRequest struct {
	Title           string           `json:"title" validate:"required,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=5000"`
	Type            models.EventType `json:"type" validate:"required,event_category"`
	StartDate       time.Time        `json:"start_date" validate:"required"`
	EndDate         *time.Time       `json:"end_date"`
	ImageURL        *string          `json:"image_url" validate:"omitempty,max=500,http_url"`
	BackgroundColor *string          `json:"background_color" validate:"omitempty,hexcolor_or_empty"`
	Active          *bool            `json:"active"`
	CountyIDs       []string         `json:"county_ids" validate:"omitempty,dive,uuid"`
}

// EventService manages official calendar events.
type EventService struct {
	repo      eventRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: ensureValidator(validate), logger: logger}
}

// List returns paginated events.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid event type")
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, paginationFor(filter.Page, filter.PageSize, total), nil
}

// ActiveEvents returns every active event, served from cache when possible.
func (s *EventService) ActiveEvents(ctx context.Context) ([]models.Event, error) {
	events, err := Remember(ctx, s.cache, CacheKeyActiveEvents, s.cacheTTL, s.repo.ListActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active events")
	}
	return events, nil
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// Create stores a new event.
func (s *EventService) Create(ctx context.Context, req EventRequest) (*models.Event, error) {
	event := &models.Event{Active: true}
	if err := s.apply(event, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.invalidate(ctx)
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
	return event, nil
}

// Update replaces an event's fields and county targeting.
func (s *EventService) Update(ctx context.Context, id string, req EventRequest) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(event, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.invalidate(ctx)
	return event, nil
}

// ToggleActive flips the active flag and returns the updated event.
func (s *EventService) ToggleActive(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !event.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle event")
	}
	event.Active = !event.Active
	s.invalidate(ctx)
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.invalidate(ctx)
	s.logger.Info("event deleted", zap.String("event_id", id))
	return nil
}

func (s *EventService) apply(event *models.Event, req EventRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.CountyIDs = uniqueIDs(req.CountyIDs)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid event payload")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}

	event.Title = req.Title
	event.Type = req.Type
	event.StartDate = req.StartDate.UTC()
	event.EndDate = nil
	if req.EndDate != nil {
		end := req.EndDate.UTC()
		event.EndDate = &end
	}
	event.Description = nil
	if desc := optionalText(req.Description); desc != nil {
		cleaned := sanitize.SanitizeHTML(*desc)
		event.Description = &cleaned
	}
	event.ImageURL = optionalText(req.ImageURL)
	event.BackgroundColor = optionalText(req.BackgroundColor)
	if req.Active != nil {
		event.Active = *req.Active
	}
	event.CountyIDs = req.CountyIDs
	return nil
}

func (s *EventService) invalidate(ctx context.Context) {
	_, _ = s.cache.Invalidate(ctx, CachePatternEvents)
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
