package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = time.Second
	maxBackoff     = time.Minute
)

// ErrDatasetUnavailable is returned while no dataset snapshot has been loaded.
var ErrDatasetUnavailable = errors.New("dataset not loaded yet")

// DatasetSource returns the raw CSV text of the storm-track dataset.
// Returning domain.ErrNotModified keeps the current snapshot.
type DatasetSource interface {
	Fetch(ctx context.Context) (string, error)
}

// loadMarker is implemented by sources that track what they last served.
// MarkLoaded is called only after the fetched text parsed and was stored.
type loadMarker interface {
	MarkLoaded()
}

// Snapshot is an immutable parsed copy of the dataset.
type Snapshot struct {
	Records  []domain.StormRecord
	LoadedAt time.Time
}

// SnapshotProvider hands out the current dataset snapshot.
type SnapshotProvider interface {
	Snapshot() (*Snapshot, bool)
}

// Refresher loads the dataset, keeps the last good snapshot and re-loads it
// on an interval. A failed load never replaces a good snapshot.
type Refresher struct {
	source   DatasetSource
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	snapshot atomic.Pointer[Snapshot]
}

// NewRefresher creates a Refresher. An interval of zero loads once and stops.
func NewRefresher(source DatasetSource, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		source:   source,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
		clock:    clockwork.NewRealClock(),
	}
}

// WithClock replaces the clock used for waits between loads.
func (r *Refresher) WithClock(c clockwork.Clock) *Refresher {
	r.clock = c
	return r
}

// CheckReadiness returns nil once a dataset snapshot is available.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if r.snapshot.Load() == nil {
		return ErrDatasetUnavailable
	}
	return nil
}

// Snapshot returns the current snapshot and whether one has been loaded.
func (r *Refresher) Snapshot() (*Snapshot, bool) {
	s := r.snapshot.Load()
	return s, s != nil
}

// Load fetches and parses the dataset once and swaps in the new snapshot.
func (r *Refresher) Load(ctx context.Context) error {
	start := time.Now()

	text, err := r.source.Fetch(ctx)
	if errors.Is(err, domain.ErrNotModified) && r.snapshot.Load() == nil {
		err = errors.New("dataset reported unchanged before any snapshot was loaded")
	}
	if errors.Is(err, domain.ErrNotModified) {
		r.logger.Debug("dataset unchanged")
		r.metrics.DatasetRefreshes.WithLabelValues("unchanged").Inc()
		return nil
	}
	if err != nil {
		r.metrics.DatasetRefreshes.WithLabelValues("error").Inc()
		return err
	}

	records, err := domain.ParseRecords(text)
	if err != nil {
		r.metrics.DatasetRefreshes.WithLabelValues("error").Inc()
		return err
	}

	r.snapshot.Store(&Snapshot{Records: records, LoadedAt: domain.Now()})
	if m, ok := r.source.(loadMarker); ok {
		m.MarkLoaded()
	}
	r.metrics.DatasetRefreshes.WithLabelValues("success").Inc()
	r.metrics.DatasetRefreshDuration.Observe(time.Since(start).Seconds())
	r.metrics.DatasetRecords.Set(float64(len(records)))
	r.metrics.DatasetLoaded.Set(1)
	r.logger.Info("dataset loaded", "records", len(records), "duration", time.Since(start))
	return nil
}

// Run loads the dataset and keeps it fresh until the context is cancelled.
// Failed loads are retried with exponential backoff.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("dataset refresher started", "interval", r.interval)

	backoff := initialBackoff
	for {
		err := r.Load(ctx)
		if ctx.Err() != nil {
			r.logger.Info("dataset refresher stopping", "reason", ctx.Err())
			return nil
		}

		var wait time.Duration
		if err != nil {
			r.logger.Error("dataset load failed", "error", err, "retry_in", backoff)
			wait = backoff
			backoff = nextBackoff(backoff, maxBackoff)
		} else {
			backoff = initialBackoff
			if r.interval <= 0 {
				return nil
			}
			wait = r.interval
		}

		if !sleepWithContext(ctx, r.clock, wait) {
			r.logger.Info("dataset refresher stopping", "reason", ctx.Err())
			return nil
		}
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
