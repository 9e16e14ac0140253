package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
	xlogger "Sully/pkg/logger"
)

// ErrNoSnapshot is returned when a refresh fails and no snapshot has ever
// been obtained.
var ErrNoSnapshot = errors.New("no quote snapshot available")

// SnapshotCache holds the single process-wide quote snapshot. The whole
// set is replaced atomically on refresh, never partially mutated.
// Concurrent stale readers collapse into one in-flight refresh; waiters
// pick up the refreshed snapshot instead of duplicating upstream calls.
type SnapshotCache struct {
	agg     *Aggregator
	symbols []string
	maxAge  time.Duration
	metrics repository.Metrics
	logger  *xlogger.Logger

	mu       sync.Mutex
	snap     *models.Snapshot
	inflight chan struct{}

	now func() time.Time
}

// NewSnapshotCache creates a quote cache over the aggregator.
func NewSnapshotCache(agg *Aggregator, symbols []string, maxAge time.Duration, metrics repository.Metrics, logger *xlogger.Logger) *SnapshotCache {
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &SnapshotCache{
		agg:     agg,
		symbols: symbols,
		maxAge:  maxAge,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Symbols returns the tracked symbol list.
func (c *SnapshotCache) Symbols() []string {
	return append([]string(nil), c.symbols...)
}

// Snapshot returns the current snapshot, refreshing through the
// aggregator when missing or older than maxAge. On refresh failure the
// stale snapshot is still served; ErrNoSnapshot surfaces only when there
// has never been a successful refresh.
func (c *SnapshotCache) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	for {
		c.mu.Lock()
		if c.snap != nil && !c.snap.Stale(c.now(), c.maxAge) {
			snap := c.snap
			c.mu.Unlock()
			if c.metrics != nil {
				c.metrics.RecordCacheRefresh("hit")
			}
			return snap, nil
		}

		if c.inflight != nil {
			done := c.inflight
			c.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		done := make(chan struct{})
		c.inflight = done
		c.mu.Unlock()

		snap, err := c.agg.FetchQuotes(ctx, c.symbols)

		c.mu.Lock()
		c.inflight = nil
		close(done)
		if err != nil {
			stale := c.snap
			c.mu.Unlock()
			if c.metrics != nil {
				c.metrics.RecordCacheRefresh("failed")
			}
			if c.logger != nil {
				c.logger.Warn("snapshot refresh failed", xlogger.Error(err))
			}
			if stale != nil {
				return stale, nil
			}
			return nil, ErrNoSnapshot
		}
		c.snap = snap
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.RecordCacheRefresh("refreshed")
		}
		return snap, nil
	}
}

// Current returns the stored snapshot without triggering a refresh, or
// nil when none exists.
func (c *SnapshotCache) Current() *models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}
