package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
)

type mockSettingsRepo struct {
	stored      *models.Settings
	gets        int
	invalidated *time.Time
}

func (m *mockSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	m.gets++
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	cp := *m.stored
	return &cp, nil
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, settings *models.Settings) error {
	cp := *settings
	m.stored = &cp
	return nil
}

func (m *mockSettingsRepo) TouchCacheInvalidation(ctx context.Context, at time.Time) error {
	m.invalidated = &at
	return nil
}

func TestSettingsServiceFallsBackToDefaults(t *testing.T) {
	repo := &mockSettingsRepo{}
	svc := NewSettingsService(repo, nil, 0, "2025-2026", nil, nil)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ics.DefaultCalendarName, settings.CalendarName)
	assert.Equal(t, "2025-2026", settings.SchoolYear)
	assert.True(t, settings.AdsEnabled)
	assert.True(t, settings.ShowCalendarDayNumbers)
}

func TestSettingsServiceUpdateInvalidatesCachedCopy(t *testing.T) {
	cache, store := newTestCache()
	repo := &mockSettingsRepo{}
	svc := NewSettingsService(repo, cache, time.Minute, "2025-2026", nil, nil)

	_, err := svc.Get(context.Background())
	require.NoError(t, err)
	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)
	assert.True(t, store.has(CacheKeySettings))

	updated, err := svc.Update(context.Background(), UpdateSettingsRequest{
		CalendarName: "  Calendar Școlar 2026  ",
		SchoolYear:   "2026-2027",
		AdsEnabled:   false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Calendar Școlar 2026", updated.CalendarName)
	assert.False(t, store.has(CacheKeySettings))

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.AdsEnabled)
	assert.Equal(t, "2026-2027", settings.SchoolYear)
}

func TestSettingsServiceUpdateValidation(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepo{}, nil, 0, "2025-2026", nil, nil)

	_, err := svc.Update(context.Background(), UpdateSettingsRequest{CalendarName: "", SchoolYear: "2025-2026"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Update(context.Background(), UpdateSettingsRequest{CalendarName: "Calendar", SchoolYear: "2025/2026"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestSettingsServiceInvalidateAllCaches(t *testing.T) {
	cache, store := newTestCache()
	require.NoError(t, store.Set(context.Background(), CacheKeyActiveEvents, []string{"x"}, 0))
	require.NoError(t, store.Set(context.Background(), CountyCacheKey("ref:cluj"), "y", 0))

	repo := &mockSettingsRepo{}
	svc := NewSettingsService(repo, cache, time.Minute, "2025-2026", nil, nil)
	fixed := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	removed, err := svc.InvalidateAllCaches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	require.NotNil(t, repo.invalidated)
	assert.Equal(t, fixed, *repo.invalidated)
}
