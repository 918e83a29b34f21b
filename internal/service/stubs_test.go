package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	gets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func newTestCache() (*CacheService, *memoryCache) {
	store := newMemoryCache()
	return NewCacheService(store, nil, time.Minute, nil, true), store
}

type mockEventRepo struct {
	items       map[string]*models.Event
	activeCalls int
	listErr     error
}

func newMockEventRepo(events ...models.Event) *mockEventRepo {
	repo := &mockEventRepo{items: make(map[string]*models.Event)}
	for i := range events {
		e := events[i]
		repo.items[e.ID] = &e
	}
	return repo
}

func (m *mockEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []models.Event
	for _, e := range m.items {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *mockEventRepo) ListActive(ctx context.Context) ([]models.Event, error) {
	m.activeCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Event
	for _, e := range m.items {
		if e.Active {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	if e, ok := m.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = "generated"
	}
	cp := *event
	m.items[event.ID] = &cp
	return nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *models.Event) error {
	cp := *event
	m.items[event.ID] = &cp
	return nil
}

func (m *mockEventRepo) SetActive(ctx context.Context, id string, active bool) error {
	e, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Active = active
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type mockPromoRepo struct {
	items       map[string]*models.Promo
	clicks      map[string]int
	impressions map[string]int64
	mu          sync.Mutex
	failNext    int
}

func newMockPromoRepo(promos ...models.Promo) *mockPromoRepo {
	repo := &mockPromoRepo{items: make(map[string]*models.Promo), clicks: map[string]int{}, impressions: map[string]int64{}}
	for i := range promos {
		p := promos[i]
		repo.items[p.ID] = &p
	}
	return repo
}

func (m *mockPromoRepo) List(ctx context.Context, filter models.PromoFilter) ([]models.Promo, int, error) {
	var out []models.Promo
	for _, p := range m.items {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockPromoRepo) ListActiveAt(ctx context.Context, now time.Time) ([]models.Promo, error) {
	var out []models.Promo
	for _, p := range m.items {
		if p.ActiveAt(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPromoRepo) GetByID(ctx context.Context, id string) (*models.Promo, error) {
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPromoRepo) Create(ctx context.Context, promo *models.Promo) error {
	if promo.ID == "" {
		promo.ID = "generated"
	}
	cp := *promo
	m.items[promo.ID] = &cp
	return nil
}

func (m *mockPromoRepo) Update(ctx context.Context, promo *models.Promo) error {
	cp := *promo
	m.items[promo.ID] = &cp
	return nil
}

func (m *mockPromoRepo) SetActive(ctx context.Context, id string, active bool) error {
	p, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Active = active
	return nil
}

func (m *mockPromoRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockPromoRepo) IncrementClicks(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	m.clicks[id]++
	return nil
}

func (m *mockPromoRepo) IncrementImpressions(ctx context.Context, id string, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return sql.ErrConnDone
	}
	m.impressions[id] += n
	return nil
}

func (m *mockPromoRepo) impressionsFor(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.impressions[id]
}
