package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/pkg/jobs"
)

const impressionJobType = "promo_impressions"

type impressionRepository interface {
	IncrementImpressions(ctx context.Context, id string, n int64) error
}

type impressionBatch struct {
	PromoID string
	Count   int64
}

// ImpressionTracker buffers promo impressions per promo and persists them in batches
// through a worker queue.
type ImpressionTracker struct {
	repo     impressionRepository
	queue    *jobs.Queue
	metrics  *MetricsService
	logger   *zap.Logger
	maxBatch int64

	mu      sync.Mutex
	pending map[string]int64
	total   int64
}

// NewImpressionTracker builds a tracker. maxBatch triggers an early flush once that many
// impressions are buffered.
func NewImpressionTracker(repo impressionRepository, cfg jobs.QueueConfig, maxBatch int, metrics *MetricsService, logger *zap.Logger) *ImpressionTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBatch <= 0 {
		maxBatch = 500
	}
	cfg.Logger = logger
	t := &ImpressionTracker{
		repo:     repo,
		metrics:  metrics,
		logger:   logger,
		maxBatch: int64(maxBatch),
		pending:  make(map[string]int64),
	}
	t.queue = jobs.NewQueue("promo-impressions", t.handle, cfg)
	return t
}

// Start runs the persistence workers.
func (t *ImpressionTracker) Start(ctx context.Context) {
	t.queue.Start(ctx)
}

// Record counts one impression. It never blocks on the database.
func (t *ImpressionTracker) Record(promoID string) {
	if promoID == "" {
		return
	}
	t.mu.Lock()
	t.pending[promoID]++
	t.total++
	full := t.total >= t.maxBatch
	t.mu.Unlock()
	if full {
		t.Flush(context.Background())
	}
}

// Pending reports the buffered impression count per promo.
func (t *ImpressionTracker) Pending() map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := make(map[string]int64, len(t.pending))
	for id, n := range t.pending {
		snapshot[id] = n
	}
	return snapshot
}

// Flush hands buffered counts to the queue. Counts the queue cannot take stay buffered.
func (t *ImpressionTracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	batch := t.pending
	t.pending = make(map[string]int64, len(batch))
	t.total = 0
	t.mu.Unlock()

	var requeued int
	for id, n := range batch {
		if err := ctx.Err(); err != nil {
			t.restore(id, n)
			requeued++
			continue
		}
		job := jobs.Job{ID: id, Type: impressionJobType, Payload: impressionBatch{PromoID: id, Count: n}}
		if !t.queue.TryEnqueue(job) {
			t.restore(id, n)
			requeued++
		}
	}
	if requeued > 0 {
		return fmt.Errorf("impression queue unavailable, %d promos kept for the next flush", requeued)
	}
	return nil
}

// Stop flushes what remains, waits for the queue to drain and persists anything the
// queue could not accept.
func (t *ImpressionTracker) Stop(ctx context.Context) {
	_ = t.Flush(ctx)
	t.queue.Stop()

	t.mu.Lock()
	leftover := t.pending
	t.pending = make(map[string]int64)
	t.total = 0
	t.mu.Unlock()
	for id, n := range leftover {
		if err := t.persist(ctx, impressionBatch{PromoID: id, Count: n}); err != nil {
			t.logger.Error("dropping promo impressions", zap.String("promo_id", id), zap.Int64("count", n), zap.Error(err))
		}
	}
}

func (t *ImpressionTracker) restore(id string, n int64) {
	t.mu.Lock()
	t.pending[id] += n
	t.total += n
	t.mu.Unlock()
}

func (t *ImpressionTracker) handle(ctx context.Context, job jobs.Job) error {
	batch, ok := job.Payload.(impressionBatch)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	return t.persist(ctx, batch)
}

func (t *ImpressionTracker) persist(ctx context.Context, batch impressionBatch) error {
	if err := t.repo.IncrementImpressions(ctx, batch.PromoID, batch.Count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			t.logger.Debug("impressions for deleted promo discarded", zap.String("promo_id", batch.PromoID))
			return nil
		}
		return err
	}
	t.metrics.AddPromoImpressions(batch.Count)
	return nil
}
