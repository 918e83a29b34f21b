package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
)

// Cache keys and invalidation patterns for the feed projections.
const (
	CacheKeyActiveEvents = "calendar:events:active"
	CacheKeyActivePromos = "calendar:promos:active"
	CacheKeySettings     = "calendar:settings"
	cacheKeyCountyPrefix = "calendar:county:"

	CachePatternEvents   = "calendar:events*"
	CachePatternPromos   = "calendar:promos*"
	CachePatternCounties = "calendar:county*"
	CachePatternSettings = "calendar:settings*"
	CachePatternAll      = "calendar:*"
)

// CountyCacheKey is the cache key of a county lookup.
func CountyCacheKey(slug string) string {
	return cacheKeyCountyPrefix + slug
}

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided patterns and returns the number of keys removed.
func (s *CacheService) Invalidate(ctx context.Context, patterns ...string) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	total := 0
	for _, pattern := range patterns {
		n, err := s.repo.DeleteByPattern(ctx, pattern)
		total += n
		if err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
			return total, err
		}
	}
	return total, nil
}

// Remember returns the cached value under key or loads, stores and returns a fresh one.
// Cache failures fall through to the loader.
func Remember[T any](ctx context.Context, cache *CacheService, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if hit, _ := cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}
	fresh, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = cache.Set(ctx, key, fresh, ttl)
	return fresh, nil
}
