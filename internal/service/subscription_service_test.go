package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
)

type accessRecord struct {
	countyID  string
	userAgent string
	ip        *string
}

type mockSubscriptionRepo struct {
	accesses  []accessRecord
	actions   []models.SubscriptionAction
	accessErr error
	byCounty  []models.CountySubscriptionStats
	byClient  []models.ClientStats
	byAction  map[models.ActionType]int64
}

func (m *mockSubscriptionRepo) UpsertAccess(ctx context.Context, countyID, userAgent string, ip *string, at time.Time) error {
	if m.accessErr != nil {
		return m.accessErr
	}
	m.accesses = append(m.accesses, accessRecord{countyID: countyID, userAgent: userAgent, ip: ip})
	return nil
}

func (m *mockSubscriptionRepo) CreateAction(ctx context.Context, action *models.SubscriptionAction) error {
	m.actions = append(m.actions, *action)
	return nil
}

func (m *mockSubscriptionRepo) ListSubscriptions(ctx context.Context, countyID string) ([]models.CalendarSubscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepo) ListActions(ctx context.Context, since *time.Time, limit int) ([]models.SubscriptionAction, error) {
	return m.actions, nil
}

func (m *mockSubscriptionRepo) StatsByCounty(ctx context.Context) ([]models.CountySubscriptionStats, error) {
	return m.byCounty, nil
}

func (m *mockSubscriptionRepo) StatsByClient(ctx context.Context) ([]models.ClientStats, error) {
	return m.byClient, nil
}

func (m *mockSubscriptionRepo) CountActions(ctx context.Context) (map[models.ActionType]int64, error) {
	return m.byAction, nil
}

func TestClientFamily(t *testing.T) {
	cases := []struct {
		ua   string
		want string
	}{
		{"", ""},
		{"Google-Calendar-Importer", ClientGoogle},
		{"Mozilla/5.0 (compatible; GoogleCalendar/1.0)", ClientGoogle},
		{"macOS/14.2 (23C64) CalendarAgent/988.2", ClientApple},
		{"iOS/17.1 (21B74) dataaccessd/1.0 Calendar/1.0", ClientApple},
		{"Microsoft Office/16.0 (Windows NT 10.0; Microsoft Outlook 16.0.17029)", ClientOutlook},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:115.0) Gecko/20100101 Thunderbird/115.5.0", ClientThunderbird},
		{"DAVx5/4.3.9 CalDAV", ClientCalDAV},
		{"curl/8.4.0", ClientOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClientFamily(tc.ua), tc.ua)
	}
}

func TestSubscriptionServiceRecordAccess(t *testing.T) {
	repo := &mockSubscriptionRepo{}
	svc := NewSubscriptionService(repo, newMockCountyRepo(countyFixtures()...), NewMetricsService(), nil, nil)

	require.NoError(t, svc.RecordAccess(context.Background(), countyCluj, "Google-Calendar-Importer", "10.0.0.1"))
	require.NoError(t, svc.RecordAccess(context.Background(), countyCluj, "", strings.Repeat("f", 51)))
	require.NoError(t, svc.RecordAccess(context.Background(), countyCluj, "curl/8", ""))

	require.Len(t, repo.accesses, 3)
	assert.Equal(t, ClientGoogle, repo.accesses[0].userAgent)
	assert.Equal(t, "10.0.0.1", *repo.accesses[0].ip)
	assert.Equal(t, "", repo.accesses[1].userAgent)
	assert.Equal(t, "unknown", *repo.accesses[1].ip)
	assert.Nil(t, repo.accesses[2].ip)
}

func TestSubscriptionServiceTrackAction(t *testing.T) {
	repo := &mockSubscriptionRepo{}
	svc := NewSubscriptionService(repo, newMockCountyRepo(countyFixtures()...), nil, nil, nil)
	ctx := context.Background()

	err := svc.TrackAction(ctx, TrackActionRequest{CountyID: strings.ToUpper(countyCluj), ActionType: models.ActionApple}, strings.Repeat("a", 600), "192.168.1.10")
	require.NoError(t, err)
	require.Len(t, repo.actions, 1)
	action := repo.actions[0]
	assert.Equal(t, countyCluj, action.CountyID)
	require.NotNil(t, action.UserAgent)
	assert.Len(t, *action.UserAgent, maxUserAgentLength)
	assert.Equal(t, "192.168.1.10", *action.IPAddress)

	invalid := []TrackActionRequest{
		{CountyID: "", ActionType: models.ActionGoogle},
		{CountyID: "cluj", ActionType: models.ActionGoogle},
		{CountyID: countyCluj, ActionType: "fax"},
		{CountyID: "9f9f9f9f-0000-4000-8000-000000000000", ActionType: models.ActionGoogle},
	}
	for _, req := range invalid {
		err := svc.TrackAction(ctx, req, "", "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
		assert.Equal(t, "invalid request", appErrors.FromError(err).Message)
	}
	assert.Len(t, repo.actions, 1)
}

func TestSubscriptionServiceStats(t *testing.T) {
	repo := &mockSubscriptionRepo{
		byCounty: []models.CountySubscriptionStats{
			{CountyID: countyCluj, Clients: 3, AccessCount: 40},
			{CountyID: "c2", Clients: 0, AccessCount: 0},
		},
		byAction: map[models.ActionType]int64{models.ActionGoogle: 5, models.ActionCopyURL: 2},
	}
	svc := NewSubscriptionService(repo, newMockCountyRepo(), nil, nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSubscriptions)
	assert.Equal(t, int64(40), stats.TotalAccesses)
	assert.Equal(t, int64(7), stats.TotalActions)
	assert.Equal(t, 1, stats.UniqueCounties)
	assert.NotNil(t, stats.ByClient)
}
