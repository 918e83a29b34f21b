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
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
)

// Calendar client families derived from feed User-Agent headers.
const (
	ClientGoogle      = "Google Calendar"
	ClientApple       = "Apple Calendar"
	ClientOutlook     = "Outlook"
	ClientThunderbird = "Thunderbird"
	ClientCalDAV      = "CalDAV Client"
	ClientOther       = "Other"
)

// ClientFamily maps a User-Agent to a calendar client family. An empty agent yields "".
func ClientFamily(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "googlecalendar"), strings.Contains(ua, "google-calendar"):
		return ClientGoogle
	case strings.Contains(ua, "calendaragent"), strings.Contains(ua, "calendar/"):
		return ClientApple
	case strings.Contains(ua, "outlook"), strings.Contains(ua, "microsoft"):
		return ClientOutlook
	case strings.Contains(ua, "thunderbird"):
		return ClientThunderbird
	case strings.Contains(ua, "caldav"):
		return ClientCalDAV
	}
	return ClientOther
}

type subscriptionRepository interface {
	UpsertAccess(ctx context.Context, countyID, userAgent string, ip *string, at time.Time) error
	CreateAction(ctx context.Context, action *models.SubscriptionAction) error
	ListSubscriptions(ctx context.Context, countyID string) ([]models.CalendarSubscription, error)
	ListActions(ctx context.Context, since *time.Time, limit int) ([]models.SubscriptionAction, error)
	StatsByCounty(ctx context.Context) ([]models.CountySubscriptionStats, error)
	StatsByClient(ctx context.Context) ([]models.ClientStats, error)
	CountActions(ctx context.Context) (map[models.ActionType]int64, error)
}

type countyLookup interface {
	GetByID(ctx context.Context, id string) (*models.County, error)
}

// TrackActionRequest is the public subscribe button payload.
type TrackActionRequest struct {
	CountyID   string            `json:"countyId" validate:"required,uuid"`
	ActionType models.ActionType `json:"actionType" validate:"required"`
}

// SubscriptionService records feed subscriptions and subscribe button clicks.
type SubscriptionService struct {
	repo      subscriptionRepository
	counties  countyLookup
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(repo subscriptionRepository, counties countyLookup, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{repo: repo, counties: counties, metrics: metrics, validator: ensureValidator(validate), logger: logger, now: time.Now}
}

// RecordAccess counts a county feed fetch for the client family behind userAgent.
func (s *SubscriptionService) RecordAccess(ctx context.Context, countyID, userAgent, ip string) error {
	family := ClientFamily(userAgent)
	if err := s.repo.UpsertAccess(ctx, countyID, family, capIP(ip), s.now()); err != nil {
		return err
	}
	s.metrics.ObserveSubscription(lo.Ternary(family == "", "Unknown", family))
	return nil
}

// TrackAction stores a subscribe button click.
func (s *SubscriptionService) TrackAction(ctx context.Context, req TrackActionRequest, userAgent, ip string) error {
	req.CountyID = strings.ToLower(strings.TrimSpace(req.CountyID))
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid request")
	}
	if !req.ActionType.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid request")
	}
	if _, err := s.counties.GetByID(ctx, req.CountyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "invalid request")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "operation failed")
	}

	action := &models.SubscriptionAction{
		CountyID:   req.CountyID,
		ActionType: req.ActionType,
		IPAddress:  capIP(ip),
	}
	if ua := strings.TrimSpace(userAgent); ua != "" {
		ua = ics.Truncate(ua, maxUserAgentLength)
		action.UserAgent = &ua
	}
	if err := s.repo.CreateAction(ctx, action); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "operation failed")
	}
	return nil
}

// Stats builds the subscribers overview.
func (s *SubscriptionService) Stats(ctx context.Context) (*models.SubscriptionStats, error) {
	byCounty, err := s.repo.StatsByCounty(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription stats")
	}
	byClient, err := s.repo.StatsByClient(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription stats")
	}
	byAction, err := s.repo.CountActions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription stats")
	}

	stats := &models.SubscriptionStats{
		ByCounty: lo.Ternary(byCounty == nil, []models.CountySubscriptionStats{}, byCounty),
		ByClient: lo.Ternary(byClient == nil, []models.ClientStats{}, byClient),
		ByAction: byAction,
	}
	for _, row := range byCounty {
		stats.TotalSubscriptions += row.Clients
		stats.TotalAccesses += row.AccessCount
		if row.Clients > 0 {
			stats.UniqueCounties++
		}
	}
	stats.TotalActions = lo.Sum(lo.Values(byAction))
	return stats, nil
}

// Subscriptions lists raw subscription rows, optionally for one county.
func (s *SubscriptionService) Subscriptions(ctx context.Context, countyID string) ([]models.CalendarSubscription, error) {
	subs, err := s.repo.ListSubscriptions(ctx, countyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}
	return subs, nil
}

// RecentActions lists the newest subscribe clicks.
func (s *SubscriptionService) RecentActions(ctx context.Context, since *time.Time, limit int) ([]models.SubscriptionAction, error) {
	actions, err := s.repo.ListActions(ctx, since, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscription actions")
	}
	return actions, nil
}
