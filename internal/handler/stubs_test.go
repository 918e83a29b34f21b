package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	"github.com/noah-isme/calendar-scolar-api/internal/service"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
)

const (
	adminToken  = "admin-token"
	editorToken = "editor-token"
)

type feedStub struct {
	feeds      map[string]*service.Feed
	err        error
	lastClient *service.ClientInfo
	lastFormat string
}

func (s *feedStub) NationalFeed(ctx context.Context) (*service.Feed, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.feeds[service.FeedNational], nil
}

func (s *feedStub) CountyFeed(ctx context.Context, slug string, client *service.ClientInfo) (*service.Feed, error) {
	s.lastClient = client
	if s.err != nil {
		return nil, s.err
	}
	if slug != "cluj" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
	}
	return s.feeds[service.FeedCounty], nil
}

func (s *feedStub) PremiumFeed(ctx context.Context, token string) (*service.Feed, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrTokenInvalid, "invalid premium link")
	}
	return s.feeds[service.FeedPremium], nil
}

func (s *feedStub) County(ctx context.Context, slug, format string) (*service.ExportFile, error) {
	s.lastFormat = format
	if format == service.FormatPDF {
		return &service.ExportFile{Filename: "calendar-scolar-" + slug + ".pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
	}
	return &service.ExportFile{Filename: "calendar-scolar-" + slug + ".csv", ContentType: "text/csv; charset=utf-8", Body: []byte("Title,Type,Start,End\r\n")}, nil
}

func newFeedStub() *feedStub {
	body := []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	return &feedStub{feeds: map[string]*service.Feed{
		service.FeedNational: {Filename: "calendar-scolar.ics", Body: body},
		service.FeedCounty:   {Filename: "judet-cluj.ics", Body: body},
		service.FeedPremium:  {Filename: "calendar-scolar-premium.ics", Body: body},
	}}
}

type countyStub struct {
	counties   []models.County
	detail     *models.CountyDetail
	lastFilter models.CountyFilter
	periodReq  *service.PeriodRequest
}

func (s *countyStub) List(ctx context.Context, filter models.CountyFilter) ([]models.County, error) {
	s.lastFilter = filter
	return s.counties, nil
}

func (s *countyStub) GetBySlug(ctx context.Context, slug string) (*models.CountyDetail, error) {
	if s.detail == nil || s.detail.Slug != slug {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
	}
	return s.detail, nil
}

func (s *countyStub) Ref(ctx context.Context, slug string) (*models.CountyRef, error) {
	if slug != "cluj" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
	}
	return &models.CountyRef{ID: "county-cluj", Slug: "cluj", Active: true}, nil
}

func (s *countyStub) Update(ctx context.Context, id string, req service.UpdateCountyRequest) (*models.County, error) {
	return &models.County{ID: id, Name: req.Name, GroupID: req.GroupID}, nil
}

func (s *countyStub) ToggleActive(ctx context.Context, id string) (*models.County, error) {
	return &models.County{ID: id}, nil
}

func (s *countyStub) ListGroups(ctx context.Context) ([]models.VacationGroupSummary, error) {
	return []models.VacationGroupSummary{}, nil
}

func (s *countyStub) GetGroup(ctx context.Context, id string) (*models.VacationGroup, error) {
	return &models.VacationGroup{ID: id}, nil
}

func (s *countyStub) UpdateGroup(ctx context.Context, id string, req service.UpdateGroupRequest) (*models.VacationGroup, error) {
	return &models.VacationGroup{ID: id, Name: req.Name, Color: req.Color}, nil
}

func (s *countyStub) GroupPeriods(ctx context.Context, groupID, schoolYear string) ([]models.VacationPeriod, error) {
	return []models.VacationPeriod{{ID: "p1", GroupID: groupID, SchoolYear: schoolYear}}, nil
}

func (s *countyStub) CreatePeriod(ctx context.Context, req service.PeriodRequest) (*models.VacationPeriod, error) {
	s.periodReq = &req
	return &models.VacationPeriod{ID: "p-new", GroupID: req.GroupID, Name: req.Name}, nil
}

func (s *countyStub) UpdatePeriod(ctx context.Context, id string, req service.PeriodRequest) (*models.VacationPeriod, error) {
	return &models.VacationPeriod{ID: id, Name: req.Name}, nil
}

func (s *countyStub) DeletePeriod(ctx context.Context, id string) error { return nil }

type promoStub struct {
	banners      []models.Promo
	bannerCounty string
	link         string
	deleted      []string
}

func (s *promoStub) Banners(ctx context.Context, countyID string) ([]models.Promo, error) {
	s.bannerCounty = countyID
	return s.banners, nil
}

func (s *promoStub) TrackClick(ctx context.Context, id string) (string, error) {
	if id != "promo-1" {
		return "", appErrors.Clone(appErrors.ErrNotFound, "promo not found")
	}
	return s.link, nil
}

func (s *promoStub) List(ctx context.Context, filter models.PromoFilter) ([]models.Promo, *models.Pagination, error) {
	return []models.Promo{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *promoStub) Get(ctx context.Context, id string) (*models.Promo, error) {
	return &models.Promo{ID: id}, nil
}

func (s *promoStub) Create(ctx context.Context, req service.PromoRequest) (*models.Promo, error) {
	return &models.Promo{ID: "promo-new", Title: req.Title}, nil
}

func (s *promoStub) Update(ctx context.Context, id string, req service.PromoRequest) (*models.Promo, error) {
	return &models.Promo{ID: id, Title: req.Title}, nil
}

func (s *promoStub) ToggleActive(ctx context.Context, id string) (*models.Promo, error) {
	return &models.Promo{ID: id}, nil
}

func (s *promoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type eventStub struct {
	lastFilter models.EventFilter
	created    *service.EventRequest
	createErr  error
	deleted    []string
}

func (s *eventStub) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	s.lastFilter = filter
	return []models.Event{{ID: "e1", Title: "Vacanța de iarnă"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (s *eventStub) Get(ctx context.Context, id string) (*models.Event, error) {
	if id != "e1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return &models.Event{ID: id}, nil
}

func (s *eventStub) Create(ctx context.Context, req service.EventRequest) (*models.Event, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &req
	return &models.Event{ID: "e-new", Title: req.Title, Type: req.Type}, nil
}

func (s *eventStub) Update(ctx context.Context, id string, req service.EventRequest) (*models.Event, error) {
	return &models.Event{ID: id, Title: req.Title}, nil
}

func (s *eventStub) ToggleActive(ctx context.Context, id string) (*models.Event, error) {
	return &models.Event{ID: id, Active: false}, nil
}

func (s *eventStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type settingsStub struct {
	settings    models.Settings
	invalidated int
}

func (s *settingsStub) Get(ctx context.Context) (*models.Settings, error) {
	copied := s.settings
	return &copied, nil
}

func (s *settingsStub) Update(ctx context.Context, req service.UpdateSettingsRequest) (*models.Settings, error) {
	s.settings.CalendarName = req.CalendarName
	s.settings.SchoolYear = req.SchoolYear
	return s.Get(ctx)
}

func (s *settingsStub) InvalidateAllCaches(ctx context.Context) (int, error) {
	s.invalidated++
	return 7, nil
}

type subscriberStub struct {
	tracked  *service.TrackActionRequest
	ua, ip   string
	trackErr error
	since    *time.Time
	limit    int
}

func (s *subscriberStub) TrackAction(ctx context.Context, req service.TrackActionRequest, userAgent, ip string) error {
	if s.trackErr != nil {
		return s.trackErr
	}
	s.tracked, s.ua, s.ip = &req, userAgent, ip
	return nil
}

func (s *subscriberStub) Stats(ctx context.Context) (*models.SubscriptionStats, error) {
	return &models.SubscriptionStats{TotalSubscriptions: 3, ByCounty: []models.CountySubscriptionStats{}, ByClient: []models.ClientStats{}}, nil
}

func (s *subscriberStub) Subscriptions(ctx context.Context, countyID string) ([]models.CalendarSubscription, error) {
	return []models.CalendarSubscription{}, nil
}

func (s *subscriberStub) RecentActions(ctx context.Context, since *time.Time, limit int) ([]models.SubscriptionAction, error) {
	s.since, s.limit = since, limit
	return []models.SubscriptionAction{}, nil
}

func (s *subscriberStub) PremiumToken(subscriber string) (string, time.Time, error) {
	if strings.TrimSpace(subscriber) == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid subscriber")
	}
	return "tok-" + subscriber, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

type tokenStub struct{}

func (tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	switch token {
	case adminToken:
		return &models.JWTClaims{UserID: "u-admin", Email: "admin@calendarscolar.ro", Role: models.RoleAdmin}, nil
	case editorToken:
		return &models.JWTClaims{UserID: "u-editor", Email: "editor@calendarscolar.ro", Role: models.RoleEditor}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type routerFixture struct {
	router      *gin.Engine
	feeds       *feedStub
	counties    *countyStub
	promos      *promoStub
	events      *eventStub
	settings    *settingsStub
	subscribers *subscriberStub
}

func newRouterFixture() *routerFixture {
	gin.SetMode(gin.TestMode)
	f := &routerFixture{
		feeds: newFeedStub(),
		counties: &countyStub{
			counties: []models.County{{ID: "county-cluj", Name: "Cluj", Slug: "cluj", Active: true}},
			detail:   &models.CountyDetail{County: models.County{ID: "county-cluj", Name: "Cluj", Slug: "cluj", Active: true}, Periods: []models.VacationPeriod{}},
		},
		promos:      &promoStub{link: "https://example.com/oferta"},
		events:      &eventStub{},
		settings:    &settingsStub{settings: models.Settings{ID: models.SettingsID, CalendarName: "Calendar Școlar", SchoolYear: "2025-2026"}},
		subscribers: &subscriberStub{},
	}
	f.router = NewRouter(RouterDeps{
		Config:   RouterConfig{APIPrefix: "/api/v1"},
		Tokens:   tokenStub{},
		Settings: f.settings,
	}, Handlers{
		Feeds:       NewFeedHandler(f.feeds, f.feeds),
		Public:      NewPublicHandler(f.counties, f.promos, f.subscribers),
		Events:      NewEventHandler(f.events),
		Promos:      NewPromoHandler(f.promos),
		Counties:    NewCountyHandler(f.counties),
		Settings:    NewSettingsHandler(f.settings),
		Subscribers: NewSubscriberHandler(f.subscribers, f.subscribers, "https://calendarscolar.ro/"),
		Ops:         NewMetricsHandler(nil, nil),
	})
	return f
}

func (f *routerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}
