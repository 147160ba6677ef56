package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/identity"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
)

type MaintenanceStore interface {
	ReassignUserIDs(ctx context.Context, froms []string, to string) (map[string]int64, error)
}

// CacheFlusher drops whole cache families. The Redis store implements it.
type CacheFlusher interface {
	FlushIdentities(ctx context.Context) (int, error)
	FlushLinkStatuses(ctx context.Context) (int, error)
}

type MaintenanceService struct {
	store MaintenanceStore
	cache ProfileCache // nil when Redis is disabled
	log   logger.Logger
}

func NewMaintenanceService(store MaintenanceStore, cache ProfileCache, log logger.Logger) *MaintenanceService {
	return &MaintenanceService{store: store, cache: cache, log: log}
}

// FixReport lists, per table, how many rows moved to the caller.
type FixReport struct {
	FromUserIDs []string         `json:"fromUserIds"`
	ToUserID    string           `json:"toUserId"`
	Updated     map[string]int64 `json:"updated"`
	Total       int64            `json:"total"`
}

// FixUserIDs moves rows written under from, either as given or in its
// normalized form, to the profile to. Both forms move in one transaction.
func (s *MaintenanceService) FixUserIDs(ctx context.Context, from, to string) (FixReport, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return FixReport{}, apperror.ValidationFailed("fromUserId", "fromUserId is required")
	}

	report := FixReport{ToUserID: to, Updated: map[string]int64{}}
	for _, src := range dedupe([]string{from, identity.NormalizeUserID(from)}) {
		if src != to {
			report.FromUserIDs = append(report.FromUserIDs, src)
		}
	}
	if len(report.FromUserIDs) == 0 {
		return FixReport{}, apperror.ValidationFailed("fromUserId", "fromUserId is already your profile id")
	}

	counts, err := s.store.ReassignUserIDs(ctx, report.FromUserIDs, to)
	if err != nil {
		return FixReport{}, err
	}
	for table, n := range counts {
		report.Updated[table] = n
		report.Total += n
	}
	if s.cache != nil {
		for _, src := range report.FromUserIDs {
			if err := s.cache.InvalidateProfile(ctx, src); err != nil {
				s.log.Warn("identity cache invalidation failed", logger.String("id", src), logger.Error(err))
			}
		}
	}

	s.log.Info("user ids reassigned",
		logger.String("to", to),
		logger.Strings("from", report.FromUserIDs),
		logger.Int64("rows", report.Total))
	return report, nil
}

// Cache flush scopes.
const (
	FlushAll        = "all"
	FlushIdentities = "identities"
	FlushLinks      = "links"
)

type FlushReport struct {
	Identities   int `json:"identities"`
	LinkStatuses int `json:"linkStatuses"`
}

// FlushCaches empties the identity cache, the link-status cache or both.
// Flushing link statuses makes every URL due on the next validator pass.
func (s *MaintenanceService) FlushCaches(ctx context.Context, scope string) (FlushReport, error) {
	flusher, ok := s.cache.(CacheFlusher)
	if s.cache == nil || !ok {
		return FlushReport{}, apperror.Unavailable("cache is disabled")
	}

	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		scope = FlushAll
	}
	var (
		report FlushReport
		err    error
	)
	switch scope {
	case FlushAll, FlushIdentities, FlushLinks:
	default:
		return FlushReport{}, apperror.ValidationFailed("scope", "scope must be one of all, identities, links")
	}
	if scope != FlushLinks {
		if report.Identities, err = flusher.FlushIdentities(ctx); err != nil {
			return FlushReport{}, err
		}
	}
	if scope != FlushIdentities {
		if report.LinkStatuses, err = flusher.FlushLinkStatuses(ctx); err != nil {
			return FlushReport{}, err
		}
	}

	s.log.Info("caches flushed",
		logger.String("scope", scope),
		logger.Int("identities", report.Identities),
		logger.Int("link_statuses", report.LinkStatuses))
	return report, nil
}
