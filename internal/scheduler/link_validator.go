package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
)

// DefaultLinkPageSize is how many bookmarks are read per scan query.
const DefaultLinkPageSize = 200

type LinkTargetSource interface {
	LinkTargetsPage(ctx context.Context, afterID string, limit int) ([]domain.LinkTarget, error)
}

type LinkChecker interface {
	CheckMany(ctx context.Context, urls []string) []domain.LinkStatus
}

// LinkStatusCache remembers results until they expire, which is what makes
// a URL due for another check.
type LinkStatusCache interface {
	GetLinkStatuses(ctx context.Context, urls []string) (map[string]domain.LinkStatus, error)
	SaveLinkStatusesMany(ctx context.Context, statuses []domain.LinkStatus) error
}

// LinkReport sums up one validation pass.
type LinkReport struct {
	Scanned int
	Checked int
	Broken  int
	Fresh   int // skipped, cached status still valid
}

// LinkValidator periodically checks every bookmark URL whose cached status
// has expired, caches the outcome and logs broken links.
type LinkValidator struct {
	source   LinkTargetSource
	checker  LinkChecker
	cache    LinkStatusCache // nil => every URL is checked on each pass
	metrics  *metrics.Collector
	logger   logger.Logger
	interval time.Duration
	pageSize int

	stopCh        chan struct{}
	manualTrigger chan struct{}
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewLinkValidator(
	source LinkTargetSource,
	checker LinkChecker,
	cache LinkStatusCache,
	m *metrics.Collector,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *LinkValidator {
	return &LinkValidator{
		source:        source,
		checker:       checker,
		cache:         cache,
		metrics:       m,
		logger:        log,
		interval:      interval,
		pageSize:      DefaultLinkPageSize,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a first pass in the background, then one per interval or per
// manual trigger. It never blocks the caller.
func (lv *LinkValidator) Start(ctx context.Context) {
	ctx, lv.cancel = context.WithCancel(ctx)
	ticker := time.NewTicker(lv.interval)

	lv.wg.Add(1)
	go func() {
		defer lv.wg.Done()
		defer ticker.Stop()

		lv.runLogged(ctx, "initial")
		for {
			select {
			case <-ticker.C:
				lv.runLogged(ctx, "scheduled")
			case <-lv.manualTrigger:
				lv.runLogged(ctx, "manual")
			case <-lv.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop aborts an in-flight pass and waits for the loop to exit.
func (lv *LinkValidator) Stop() {
	close(lv.stopCh)
	if lv.cancel != nil {
		lv.cancel()
	}
	lv.wg.Wait()
}

func (lv *LinkValidator) runLogged(ctx context.Context, reason string) {
	start := time.Now()
	rep, err := lv.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			lv.logger.Error("link validation failed",
				logger.String("reason", reason), logger.Error(err))
		}
		return
	}
	lv.logger.Info("link validation completed",
		logger.String("reason", reason),
		logger.Int("scanned", rep.Scanned),
		logger.Int("checked", rep.Checked),
		logger.Int("fresh", rep.Fresh),
		logger.Int("broken", rep.Broken),
		logger.Duration("elapsed", time.Since(start)))
}

// Run performs one full pass over all bookmarks.
func (lv *LinkValidator) Run(ctx context.Context) (LinkReport, error) {
	var (
		rep     LinkReport
		afterID string
	)
	for {
		page, err := lv.source.LinkTargetsPage(ctx, afterID, lv.pageSize)
		if err != nil {
			return rep, err
		}
		if len(page) == 0 {
			return rep, nil
		}
		afterID = page[len(page)-1].BookmarkID
		rep.Scanned += len(page)

		if err := lv.checkPage(ctx, page, &rep); err != nil {
			return rep, err
		}
		if len(page) < lv.pageSize {
			return rep, nil
		}
	}
}

func (lv *LinkValidator) checkPage(ctx context.Context, page []domain.LinkTarget, rep *LinkReport) error {
	// Several bookmarks may share a URL; it is checked once.
	byURL := make(map[string][]domain.LinkTarget, len(page))
	urls := make([]string, 0, len(page))
	for _, t := range page {
		if _, ok := byURL[t.URL]; !ok {
			urls = append(urls, t.URL)
		}
		byURL[t.URL] = append(byURL[t.URL], t)
	}

	if lv.cache != nil {
		cached, err := lv.cache.GetLinkStatuses(ctx, urls)
		if err != nil {
			lv.logger.Warn("link cache read failed, checking every url", logger.Error(err))
		}
		due := urls[:0]
		for _, u := range urls {
			if _, ok := cached[u]; ok {
				rep.Fresh++
				continue
			}
			due = append(due, u)
		}
		urls = due
	}
	if len(urls) == 0 {
		return nil
	}

	results := lv.checker.CheckMany(ctx, urls)
	if err := ctx.Err(); err != nil {
		return err
	}
	rep.Checked += len(results)

	for _, st := range results {
		lv.metrics.LinkChecked(st.IsValid)
		if st.IsValid {
			continue
		}
		rep.Broken++
		for _, t := range byURL[st.URL] {
			lv.logger.Warn("broken bookmark link",
				logger.String("bookmark_id", t.BookmarkID),
				logger.String("user_id", t.UserID),
				logger.String("url", st.URL),
				logger.Int("status_code", st.StatusCode),
				logger.String("error", st.Error))
		}
	}

	if lv.cache != nil {
		if err := lv.cache.SaveLinkStatusesMany(ctx, results); err != nil {
			lv.logger.Warn("link cache write failed", logger.Error(err))
		}
	}
	return nil
}
