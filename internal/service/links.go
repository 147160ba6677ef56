package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
)

// MaxValidateURLs bounds one POST /api/bookmarks/validate call.
const MaxValidateURLs = 100

type LinkChecker interface {
	CheckMany(ctx context.Context, urls []string) []domain.LinkStatus
}

// LinkCache stores recent check results keyed by URL.
type LinkCache interface {
	GetLinkStatuses(ctx context.Context, urls []string) (map[string]domain.LinkStatus, error)
	SaveLinkStatusesMany(ctx context.Context, statuses []domain.LinkStatus) error
}

type LinkStore interface {
	BookmarksByIDs(ctx context.Context, owner string, ids []string) ([]domain.Bookmark, error)
}

type LinkService struct {
	store   LinkStore
	checker LinkChecker
	cache   LinkCache // nil when Redis is disabled
	metrics *metrics.Collector
	log     logger.Logger
}

func NewLinkService(store LinkStore, checker LinkChecker, cache LinkCache, m *metrics.Collector, log logger.Logger) *LinkService {
	return &LinkService{store: store, checker: checker, cache: cache, metrics: m, log: log}
}

type LinkSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
	Cached  int `json:"cached"`
}

// LinkReport is the body of POST /api/bookmarks/validate.
type LinkReport struct {
	Results []domain.LinkStatus `json:"results"`
	Summary LinkSummary         `json:"summary"`
}

// Validate checks urls plus the URLs of the owner's bookmarkIDs. Fresh
// cached results are reused unless force is set.
func (s *LinkService) Validate(ctx context.Context, owner string, urls, bookmarkIDs []string, force bool) (LinkReport, error) {
	targets := dedupe(urls)
	if ids := dedupe(bookmarkIDs); len(ids) > 0 {
		bookmarks, err := s.store.BookmarksByIDs(ctx, owner, ids)
		if err != nil {
			return LinkReport{}, err
		}
		if len(bookmarks) != len(ids) {
			return LinkReport{}, apperror.NotFound("bookmark", strings.Join(missingIDs(ids, bookmarks), ","))
		}
		for _, b := range bookmarks {
			targets = append(targets, b.URL)
		}
		targets = dedupe(targets)
	}

	switch {
	case len(targets) == 0:
		return LinkReport{}, apperror.ValidationFailed("urls", "urls or bookmarkIds are required")
	case len(targets) > MaxValidateURLs:
		return LinkReport{}, apperror.ValidationFailed("urls", "too many URLs in one request")
	}

	cached := map[string]domain.LinkStatus{}
	if s.cache != nil && !force {
		hit, err := s.cache.GetLinkStatuses(ctx, targets)
		if err != nil {
			s.log.Warn("link cache read failed", logger.Error(err))
		} else {
			cached = hit
		}
	}

	var pending []string
	for _, u := range targets {
		if _, ok := cached[u]; ok {
			s.metrics.CacheHit("link")
			continue
		}
		s.metrics.CacheMiss("link")
		pending = append(pending, u)
	}

	fresh := map[string]domain.LinkStatus{}
	if len(pending) > 0 {
		checked := s.checker.CheckMany(ctx, pending)
		for _, st := range checked {
			s.metrics.LinkChecked(st.IsValid)
			fresh[st.URL] = st
		}
		if s.cache != nil && len(checked) > 0 {
			if err := s.cache.SaveLinkStatusesMany(ctx, checked); err != nil {
				s.log.Warn("link cache write failed", logger.Error(err))
			}
		}
		if err := ctx.Err(); err != nil {
			return LinkReport{}, err
		}
	}

	report := LinkReport{Results: make([]domain.LinkStatus, 0, len(targets))}
	for _, u := range targets {
		st, ok := cached[u]
		if ok {
			report.Summary.Cached++
		} else if st, ok = fresh[u]; !ok {
			continue
		}
		report.Results = append(report.Results, st)
		if st.IsValid {
			report.Summary.Valid++
		} else {
			report.Summary.Invalid++
		}
	}
	report.Summary.Total = len(report.Results)
	return report, nil
}

func missingIDs(ids []string, found []domain.Bookmark) []string {
	have := make(map[string]bool, len(found))
	for _, b := range found {
		have[b.ID] = true
	}
	var out []string
	for _, id := range ids {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}
