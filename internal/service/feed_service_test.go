package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
	"github.com/noah-isme/calendar-scolar-api/pkg/storage"
)

type staticEvents []models.Event

func (s staticEvents) ActiveEvents(ctx context.Context) ([]models.Event, error) { return s, nil }

type staticPromos []models.Promo

func (s staticPromos) ActivePromos(ctx context.Context) ([]models.Promo, error) { return s, nil }

type staticSettings models.Settings

func (s staticSettings) Get(ctx context.Context) (*models.Settings, error) {
	settings := models.Settings(s)
	return &settings, nil
}

type staticCounties struct {
	refs    map[string]models.CountyRef
	periods map[string][]models.VacationPeriod
	years   []string
}

func (s *staticCounties) Ref(ctx context.Context, slug string) (*models.CountyRef, error) {
	ref, ok := s.refs[slug]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "county not found")
	}
	return &ref, nil
}

func (s *staticCounties) GroupPeriods(ctx context.Context, groupID, schoolYear string) ([]models.VacationPeriod, error) {
	s.years = append(s.years, schoolYear)
	return s.periods[groupID], nil
}

type recordedAccess struct {
	countyID string
	ua       string
	ip       string
}

type stubRecorder struct {
	calls []recordedAccess
	err   error
}

func (s *stubRecorder) RecordAccess(ctx context.Context, countyID, userAgent, ip string) error {
	s.calls = append(s.calls, recordedAccess{countyID, userAgent, ip})
	return s.err
}

type countingImpressions struct {
	mu    sync.Mutex
	count map[string]int
}

func (c *countingImpressions) Record(promoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == nil {
		c.count = map[string]int{}
	}
	c.count[promoID]++
}

type feedFixture struct {
	svc         *FeedService
	counties    *staticCounties
	recorder    *stubRecorder
	impressions *countingImpressions
	signer      *storage.SignedURLSigner
}

func newFeedFixture(adsEnabled bool) *feedFixture {
	events := staticEvents{
		{ID: "e-national", Title: "Începerea cursurilor", Type: models.EventSemesterStart, StartDate: day(2025, 9, 8), Active: true},
		{ID: "e-cluj", Title: "Zilele Clujului", Type: models.EventHoliday, StartDate: day(2026, 5, 20), Active: true, CountyIDs: []string{countyCluj}},
		{ID: "e-ilfov", Title: "Zi liberă Ilfov", Type: models.EventHoliday, StartDate: day(2026, 5, 21), Active: true, CountyIDs: []string{"c2"}},
		{ID: "e-broken", Title: "  ", Type: models.EventHoliday, StartDate: day(2026, 6, 1), Active: true},
	}
	promos := staticPromos{
		{ID: "p-all", Title: "Rechizite", StartDate: day(2025, 9, 1), EndDate: day(2025, 9, 30), ShowOnCalendar: true, Active: true, Link: ptr("https://example.com/rechizite")},
		{ID: "p-banner", Title: "Doar banner", StartDate: day(2025, 9, 1), EndDate: day(2025, 9, 30), ShowAsBanner: true, Active: true},
		{ID: "p-ilfov", Title: "Meditații Ilfov", StartDate: day(2025, 9, 1), EndDate: day(2025, 9, 30), ShowOnCalendar: true, Active: true, CountyIDs: []string{"c2"}},
	}
	counties := &staticCounties{
		refs: map[string]models.CountyRef{
			"cluj":  {ID: countyCluj, Name: "Cluj", Slug: "cluj", GroupID: groupA, Active: true},
			"ilfov": {ID: "c2", Name: "Ilfov", Slug: "ilfov", GroupID: groupB},
		},
		periods: map[string][]models.VacationPeriod{
			groupA: {{ID: "p1", GroupID: groupA, Name: "Vacanța intersemestrială", Type: models.VacationIntersemester,
				StartDate: day(2026, 2, 9), EndDate: day(2026, 2, 15), SchoolYear: "2025-2026"}},
		},
	}
	settings := staticSettings{CalendarName: ics.DefaultCalendarName, SchoolYear: "2025-2026", AdsEnabled: adsEnabled}
	fixture := &feedFixture{
		counties:    counties,
		recorder:    &stubRecorder{},
		impressions: &countingImpressions{},
		signer:      storage.NewSignedURLSigner("feed-secret", time.Hour),
	}
	fixture.svc = NewFeedService(FeedDeps{
		Events:        events,
		Promos:        promos,
		Counties:      counties,
		Settings:      settings,
		Subscriptions: fixture.recorder,
		Impressions:   fixture.impressions,
		Premium:       fixture.signer,
		Metrics:       NewMetricsService(),
	})
	return fixture
}

func feedUIDs(t *testing.T, body []byte) []string {
	t.Helper()
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	require.NoError(t, err)
	var uids []string
	for _, ev := range cal.Events() {
		uid := ev.GetProperty(ical.ComponentPropertyUniqueId)
		require.NotNil(t, uid)
		uids = append(uids, strings.TrimSuffix(uid.Value, "@"+ics.DefaultDomain))
	}
	return uids
}

func TestFeedServiceNationalFeed(t *testing.T) {
	f := newFeedFixture(true)

	feed, err := f.svc.NationalFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "calendar-scolar.ics", feed.Filename)
	assert.Equal(t, 1, feed.Skipped)
	assert.ElementsMatch(t, []string{"e-national", "e-cluj", "e-ilfov", "p-all", "p-ilfov"}, feedUIDs(t, feed.Body))
	assert.Equal(t, map[string]int{"p-all": 1, "p-ilfov": 1}, f.impressions.count)
	assert.Contains(t, string(feed.Body), "X-WR-CALNAME:"+ics.DefaultCalendarName+"\r\n")
}

func TestFeedServiceNationalFeedWithoutAds(t *testing.T) {
	f := newFeedFixture(false)

	feed, err := f.svc.NationalFeed(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e-national", "e-cluj", "e-ilfov"}, feedUIDs(t, feed.Body))
	assert.Empty(t, f.impressions.count)
}

func TestFeedServiceCountyFeed(t *testing.T) {
	f := newFeedFixture(true)

	feed, err := f.svc.CountyFeed(context.Background(), "cluj", &ClientInfo{UserAgent: "Google-Calendar-Importer", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "judet-cluj.ics", feed.Filename)
	assert.Equal(t, CountyCalendarName("Cluj"), feed.Name)
	assert.ElementsMatch(t, []string{"e-national", "e-cluj", "period-p1", "p-all"}, feedUIDs(t, feed.Body))
	assert.Equal(t, []string{"2025-2026"}, f.counties.years)
	require.Len(t, f.recorder.calls, 1)
	assert.Equal(t, recordedAccess{countyCluj, "Google-Calendar-Importer", "10.0.0.1"}, f.recorder.calls[0])
}

func TestFeedServiceCountyFeedTrackingFailureStillServes(t *testing.T) {
	f := newFeedFixture(true)
	f.recorder.err = errors.New("db down")

	feed, err := f.svc.CountyFeed(context.Background(), "cluj", &ClientInfo{UserAgent: "curl/8"})
	require.NoError(t, err)
	assert.NotEmpty(t, feed.Body)
}

func TestFeedServiceCountyFeedWithoutClientSkipsTracking(t *testing.T) {
	f := newFeedFixture(true)

	_, err := f.svc.CountyFeed(context.Background(), "cluj", nil)
	require.NoError(t, err)
	assert.Empty(t, f.recorder.calls)
}

func TestFeedServiceCountyFeedUnknownOrInactive(t *testing.T) {
	f := newFeedFixture(true)

	_, err := f.svc.CountyFeed(context.Background(), "ilfov", nil)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.CountyFeed(context.Background(), "atlantis", nil)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestFeedServiceCountyItemsExcludePromos(t *testing.T) {
	f := newFeedFixture(true)

	county, items, err := f.svc.CountyItems(context.Background(), "cluj")
	require.NoError(t, err)
	assert.Equal(t, "cluj", county.Slug)
	for _, item := range items {
		assert.NotEqual(t, ics.CategoryPromo, item.Category)
	}
	assert.Empty(t, f.impressions.count)
}

func TestFeedServicePremiumFeed(t *testing.T) {
	f := newFeedFixture(true)

	token, expiresAt, err := f.svc.PremiumToken("sub-42")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	feed, err := f.svc.PremiumFeed(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "calendar-scolar-premium.ics", feed.Filename)
	assert.ElementsMatch(t, []string{"e-national", "e-cluj", "e-ilfov"}, feedUIDs(t, feed.Body))
	assert.Empty(t, f.impressions.count)

	wrongScope, _, err := f.signer.Generate("sub-42", "exports")
	require.NoError(t, err)
	_, err = f.svc.PremiumFeed(context.Background(), wrongScope)
	assert.True(t, errors.Is(err, appErrors.ErrTokenInvalid))

	_, err = f.svc.PremiumFeed(context.Background(), token+"x")
	assert.True(t, errors.Is(err, appErrors.ErrTokenInvalid))
}
