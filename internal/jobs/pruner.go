package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultPruneInterval is used when no positive interval is given.
const DefaultPruneInterval = time.Hour

// StaleRecordStore deletes saved records past their retention.
type StaleRecordStore interface {
	DeleteStaleRecords(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Pruner periodically removes saved records older than the retention period.
type Pruner struct {
	store     StaleRecordStore
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

// NewPruner creates a new pruner.
func NewPruner(store StaleRecordStore, interval, retention time.Duration, logger *zap.Logger) *Pruner {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	return &Pruner{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start runs the prune loop until ctx is cancelled.
func (p *Pruner) Start(ctx context.Context) {
	p.logger.Info("record pruner started",
		zap.Duration("interval", p.interval),
		zap.Duration("retention", p.retention))

	// Run immediately on start
	p.pruneOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("record pruner stopped")
			return
		case <-ticker.C:
			p.pruneOnce(ctx)
		}
	}
}

func (p *Pruner) pruneOnce(ctx context.Context) {
	removed, err := p.store.DeleteStaleRecords(ctx, p.retention)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("failed to prune records", zap.Error(err))
		}
		return
	}
	if removed > 0 {
		p.logger.Info("pruned stale records", zap.Int64("removed", removed))
	}
}
