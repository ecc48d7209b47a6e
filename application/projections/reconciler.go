package projections

import (
	"context"
	"fmt"
	"time"

	"marketplace/application/ports"

	"go.uber.org/zap"
)

// Reconciliation outcomes reported to ports.Metrics.
const (
	OutcomeInSync   = "in_sync"
	OutcomeRewarmed = "rewarmed"
	OutcomeLocked   = "skipped_locked"
	OutcomeFailed   = "failed"
)

// Reconciler repairs cache drift of one kind by a full rescan of the store
// whenever a reported cache count differs from the live store count.
type Reconciler struct {
	indexes map[string]ports.CacheIndex
	locker  ports.Locker
	lockTTL time.Duration
	metrics ports.Metrics
	logger  *zap.Logger
}

// NewReconciler creates a reconciler over indexes, keyed by their Kind.
func NewReconciler(
	indexes []ports.CacheIndex,
	locker ports.Locker,
	lockTTL time.Duration,
	metrics ports.Metrics,
	logger *zap.Logger,
) *Reconciler {
	byKind := make(map[string]ports.CacheIndex, len(indexes))
	for _, index := range indexes {
		byKind[index.Kind()] = index
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &Reconciler{
		indexes: byKind,
		locker:  locker,
		lockTTL: lockTTL,
		metrics: metrics,
		logger:  logger,
	}
}

// Reconcile compares reported with the store count of kind and rewarms the
// cache on a mismatch. Only one replica rescans a kind at a time; the others
// skip.
func (r *Reconciler) Reconcile(ctx context.Context, kind string, reported int) error {
	index, ok := r.indexes[kind]
	if !ok {
		r.logger.Warn("Ignoring count report for unknown kind", zap.String("kind", kind))
		return nil
	}

	release, acquired, err := r.locker.TryLock(ctx, "reconcile:"+kind, r.lockTTL)
	if err != nil {
		r.metrics.Reconciled(kind, OutcomeFailed)
		return fmt.Errorf("failed to lock reconciliation of %s: %w", kind, err)
	}
	if !acquired {
		r.logger.Debug("Reconciliation already running elsewhere", zap.String("kind", kind))
		r.metrics.Reconciled(kind, OutcomeLocked)
		return nil
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("Failed to release reconciliation lock",
				zap.String("kind", kind),
				zap.Error(err),
			)
		}
	}()

	stored, err := index.CountStored(ctx)
	if err != nil {
		r.metrics.Reconciled(kind, OutcomeFailed)
		return fmt.Errorf("failed to count stored %s: %w", kind, err)
	}
	if stored == reported {
		r.metrics.Reconciled(kind, OutcomeInSync)
		return nil
	}

	r.logger.Info("Cache count drifted, rewarming",
		zap.String("kind", kind),
		zap.Int("cached", reported),
		zap.Int("stored", stored),
	)

	written, err := index.Rewarm(ctx)
	if err != nil {
		r.metrics.Reconciled(kind, OutcomeFailed)
		return fmt.Errorf("failed to rewarm %s cache after %d writes: %w", kind, written, err)
	}

	r.metrics.Reconciled(kind, OutcomeRewarmed)
	r.logger.Info("Cache rewarmed",
		zap.String("kind", kind),
		zap.Int("written", written),
	)
	return nil
}
