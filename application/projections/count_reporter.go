package projections

import (
	"context"
	"sync"
	"time"

	"marketplace/application/ports"
	"marketplace/domain/events"
	"marketplace/pkg/utils"

	"go.uber.org/zap"
)

// GaugeReporter exports the cached entity count outside the process.
type GaugeReporter interface {
	ReportCachedEntities(ctx context.Context, kind string, count int) error
}

// CountReporter periodically publishes how many entities of each kind the
// cache holds, so the projector can detect drift.
type CountReporter struct {
	indexes   []ports.CacheIndex
	publisher ports.EventPublisher
	gauge     GaugeReporter
	metrics   ports.Metrics
	now       utils.Clock
	logger    *zap.Logger

	interval time.Duration

	stopOnce    sync.Once
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewCountReporter creates a reporter. gauge may be nil.
func NewCountReporter(
	indexes []ports.CacheIndex,
	publisher ports.EventPublisher,
	gauge GaugeReporter,
	metrics ports.Metrics,
	interval time.Duration,
	now utils.Clock,
	logger *zap.Logger,
) *CountReporter {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CountReporter{
		indexes:     indexes,
		publisher:   publisher,
		gauge:       gauge,
		metrics:     metrics,
		now:         now,
		logger:      logger,
		interval:    interval,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start begins reporting in the background
func (r *CountReporter) Start(ctx context.Context) {
	r.logger.Info("Starting cache count reporter",
		zap.Duration("interval", r.interval),
		zap.Int("kinds", len(r.indexes)),
	)

	go r.reportLoop(ctx)
}

// Stop halts the loop and waits for the current report to finish.
func (r *CountReporter) Stop() {
	r.stopOnce.Do(func() {
		r.logger.Info("Stopping cache count reporter")
		close(r.stopChan)
	})
	<-r.stoppedChan
}

func (r *CountReporter) reportLoop(ctx context.Context) {
	defer close(r.stoppedChan)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Context cancelled, stopping cache count reporter")
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.ReportOnce(ctx)
		}
	}
}

// ReportOnce publishes one count report per kind. A kind whose count cannot
// be read is skipped until the next tick.
func (r *CountReporter) ReportOnce(ctx context.Context) {
	for _, index := range r.indexes {
		kind := index.Kind()

		count, err := index.CountCached(ctx)
		if err != nil {
			r.logger.Warn("Failed to count cached entities",
				zap.String("kind", kind),
				zap.Error(err),
			)
			continue
		}
		r.metrics.CachedEntities(kind, count)

		if r.gauge != nil {
			if err := r.gauge.ReportCachedEntities(ctx, kind, count); err != nil {
				r.logger.Warn("Failed to export cached entity gauge",
					zap.String("kind", kind),
					zap.Error(err),
				)
			}
		}

		event := events.NewCacheCountReported(kind, count, r.now())
		err = r.publisher.Publish(ctx, event)
		r.metrics.EventPublished(event.GetEventType(), err)
		if err != nil {
			r.logger.Error("Failed to publish cache count",
				zap.String("kind", kind),
				zap.Int("count", count),
				zap.Error(err),
			)
			continue
		}

		r.logger.Debug("Cache count reported",
			zap.String("kind", kind),
			zap.Int("count", count),
		)
	}
}
