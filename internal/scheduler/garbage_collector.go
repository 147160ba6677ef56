package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/logger"
)

const (
	// DefaultEventRetention is how long DNA events are kept.
	DefaultEventRetention = 180 * 24 * time.Hour
	// DefaultDismissedRetention is how long dismissed recommendations are kept.
	DefaultDismissedRetention = 30 * 24 * time.Hour
)

type Purger interface {
	PurgeEvents(ctx context.Context, before time.Time) (int64, error)
	PurgeDismissedRecommendations(ctx context.Context, before time.Time) (int64, error)
}

// GarbageCollector deletes DNA events and dismissed recommendations that
// outlived their retention.
type GarbageCollector struct {
	store              Purger
	logger             logger.Logger
	interval           time.Duration
	eventRetention     time.Duration
	dismissedRetention time.Duration
	now                func() time.Time
	stopCh             chan struct{}
}

func NewGarbageCollector(
	store Purger,
	log logger.Logger,
	interval time.Duration,
	eventRetention time.Duration,
	dismissedRetention time.Duration,
) *GarbageCollector {
	if eventRetention <= 0 {
		eventRetention = DefaultEventRetention
	}
	if dismissedRetention <= 0 {
		dismissedRetention = DefaultDismissedRetention
	}

	return &GarbageCollector{
		store:              store,
		logger:             log,
		interval:           interval,
		eventRetention:     eventRetention,
		dismissedRetention: dismissedRetention,
		now:                time.Now,
		stopCh:             make(chan struct{}),
	}
}

// Start collects once, then on every tick.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	if _, err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// CollectReport counts deleted rows.
type CollectReport struct {
	Events          int64
	Recommendations int64
}

// Collect runs both purges. A failing purge does not prevent the other.
func (gc *GarbageCollector) Collect(ctx context.Context) (CollectReport, error) {
	var rep CollectReport
	now := gc.now()

	events, errEvents := gc.store.PurgeEvents(ctx, now.Add(-gc.eventRetention))
	if errEvents == nil {
		rep.Events = events
	}
	recs, errRecs := gc.store.PurgeDismissedRecommendations(ctx, now.Add(-gc.dismissedRetention))
	if errRecs == nil {
		rep.Recommendations = recs
	}

	if rep.Events+rep.Recommendations > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int64("events_deleted", rep.Events),
			logger.Int64("recommendations_deleted", rep.Recommendations))
	} else {
		gc.logger.Debug("no items to garbage collect")
	}
	return rep, errors.Join(errEvents, errRecs)
}
