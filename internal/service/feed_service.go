package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
	"github.com/noah-isme/calendar-scolar-api/pkg/storage"
)

// Feed labels used in metrics and logs.
const (
	FeedNational = "national"
	FeedCounty   = "county"
	FeedPremium  = "premium"

	premiumScope = "premium-feed"
)

type activeEventSource interface {
	ActiveEvents(ctx context.Context) ([]models.Event, error)
}

type activePromoSource interface {
	ActivePromos(ctx context.Context) ([]models.Promo, error)
}

type countySource interface {
	Ref(ctx context.Context, slug string) (*models.CountyRef, error)
	GroupPeriods(ctx context.Context, groupID, schoolYear string) ([]models.VacationPeriod, error)
}

type settingsSource interface {
	Get(ctx context.Context) (*models.Settings, error)
}

type accessRecorder interface {
	RecordAccess(ctx context.Context, countyID, userAgent, ip string) error
}

type impressionRecorder interface {
	Record(promoID string)
}

// ClientInfo identifies who fetched a county feed.
type ClientInfo struct {
	UserAgent string
	IP        string
}

// Feed is a rendered iCalendar document.
type Feed struct {
	Name     string
	Filename string
	Items    int
	Skipped  int
	Body     []byte
}

// FeedDeps groups the collaborators of FeedService.
type FeedDeps struct {
	Events        activeEventSource
	Promos        activePromoSource
	Counties      countySource
	Settings      settingsSource
	Subscriptions accessRecorder
	Impressions   impressionRecorder
	Premium       *storage.SignedURLSigner
	Generator     *ics.Generator
	Metrics       *MetricsService
	Logger        *zap.Logger
}

// FeedService turns stored rows into ICS feeds.
type FeedService struct {
	events        activeEventSource
	promos        activePromoSource
	counties      countySource
	settings      settingsSource
	subscriptions accessRecorder
	impressions   impressionRecorder
	premium       *storage.SignedURLSigner
	generator     *ics.Generator
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewFeedService constructs the service.
func NewFeedService(deps FeedDeps) *FeedService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Generator == nil {
		deps.Generator = ics.NewGenerator()
	}
	return &FeedService{
		events:        deps.Events,
		promos:        deps.Promos,
		counties:      deps.Counties,
		settings:      deps.Settings,
		subscriptions: deps.Subscriptions,
		impressions:   deps.Impressions,
		premium:       deps.Premium,
		generator:     deps.Generator,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
	}
}

// NationalFeed renders every active event plus calendar promos when ads are enabled.
func (s *FeedService) NationalFeed(ctx context.Context) (*Feed, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ActiveEvents(ctx)
	if err != nil {
		return nil, err
	}
	items := lo.Map(events, func(e models.Event, _ int) ics.CalendarItem { return ProjectEvent(e) })

	if settings.AdsEnabled {
		promos, err := s.calendarPromos(ctx, "")
		if err != nil {
			return nil, err
		}
		items = append(items, s.includePromos(promos)...)
	}
	return s.render(FeedNational, "calendar-scolar.ics", items, settings.CalendarName)
}

// CountyFeed renders the feed of one county. A nil client skips subscription tracking.
func (s *FeedService) CountyFeed(ctx context.Context, slug string, client *ClientInfo) (*Feed, error) {
	county, items, err := s.countyItems(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	if client != nil {
		s.recordAccess(ctx, county, *client)
	}
	return s.render(FeedCounty, "judet-"+county.Slug+".ics", items, CountyCalendarName(county.Name))
}

// CountyItems returns the merged items of a county without promos, for exports.
func (s *FeedService) CountyItems(ctx context.Context, slug string) (*models.CountyRef, []ics.CalendarItem, error) {
	return s.countyItems(ctx, slug, false)
}

// PremiumFeed renders the ad-free national feed for a signed subscriber token.
func (s *FeedService) PremiumFeed(ctx context.Context, token string) (*Feed, error) {
	if s.premium == nil {
		return nil, appErrors.Clone(appErrors.ErrTokenInvalid, "premium feeds are disabled")
	}
	subject, scope, _, err := s.premium.Parse(token, false)
	if err != nil || scope != premiumScope {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrTokenInvalid, "premium link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrTokenInvalid, "invalid premium link")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ActiveEvents(ctx)
	if err != nil {
		return nil, err
	}
	items := lo.Map(events, func(e models.Event, _ int) ics.CalendarItem { return ProjectEvent(e) })
	s.logger.Debug("premium feed served", zap.String("subscriber", subject))
	return s.render(FeedPremium, "calendar-scolar-premium.ics", items, settings.CalendarName)
}

// PremiumToken signs a premium feed token for subscriber and reports when it expires.
func (s *FeedService) PremiumToken(subscriber string) (string, time.Time, error) {
	if s.premium == nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrInternal, "premium signer not configured")
	}
	subscriber = strings.TrimSpace(subscriber)
	token, expiresAt, err := s.premium.Generate(subscriber, premiumScope)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subscriber")
	}
	return token, expiresAt, nil
}

// CountyCalendarName is the calendar title of a county feed.
func CountyCalendarName(countyName string) string {
	return ics.DefaultCalendarName + " - " + countyName
}

func (s *FeedService) countyItems(ctx context.Context, slug string, withPromos bool) (*models.CountyRef, []ics.CalendarItem, error) {
	county, err := s.counties.Ref(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !county.Active {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
	}

	events, err := s.events.ActiveEvents(ctx)
	if err != nil {
		return nil, nil, err
	}
	items := lo.FilterMap(events, func(e models.Event, _ int) (ics.CalendarItem, bool) {
		return ProjectEvent(e), e.AppliesTo(county.ID)
	})

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	periods, err := s.counties.GroupPeriods(ctx, county.GroupID, settings.SchoolYear)
	if err != nil {
		return nil, nil, err
	}
	items = append(items, lo.Map(periods, func(p models.VacationPeriod, _ int) ics.CalendarItem { return ProjectPeriod(p) })...)

	if withPromos && settings.AdsEnabled {
		promos, err := s.calendarPromos(ctx, county.ID)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, s.includePromos(promos)...)
	}
	return county, items, nil
}

// calendarPromos returns the active promos shown inside feeds for countyID, or all of them when empty.
func (s *FeedService) calendarPromos(ctx context.Context, countyID string) ([]models.Promo, error) {
	promos, err := s.promos.ActivePromos(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(promos, func(p models.Promo, _ int) bool {
		return p.ShowOnCalendar && (countyID == "" || p.Targets(countyID))
	}), nil
}

// includePromos projects promos and counts an impression for each.
func (s *FeedService) includePromos(promos []models.Promo) []ics.CalendarItem {
	return lo.Map(promos, func(p models.Promo, _ int) ics.CalendarItem {
		if s.impressions != nil {
			s.impressions.Record(p.ID)
		}
		return ProjectPromo(p)
	})
}

func (s *FeedService) recordAccess(ctx context.Context, county *models.CountyRef, client ClientInfo) {
	if s.subscriptions == nil {
		return
	}
	if err := s.subscriptions.RecordAccess(ctx, county.ID, client.UserAgent, client.IP); err != nil {
		s.logger.Warn("subscription tracking failed", zap.String("county", county.Slug), zap.Error(err))
	}
}

func (s *FeedService) render(feed, filename string, items []ics.CalendarItem, calendarName string) (*Feed, error) {
	var buf bytes.Buffer
	skipped, err := s.generator.RenderLenient(&buf, items, calendarName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate calendar")
	}
	for _, item := range skipped {
		s.logger.Warn("calendar item skipped", zap.String("feed", feed), zap.Int("index", item.Index), zap.String("id", item.ID), zap.String("field", item.Field))
	}
	rendered := len(items) - len(skipped)
	s.metrics.ObserveFeed(feed, rendered, len(skipped))
	return &Feed{Name: calendarName, Filename: filename, Items: rendered, Skipped: len(skipped), Body: buf.Bytes()}, nil
}
