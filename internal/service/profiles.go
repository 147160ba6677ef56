package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/identity"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
)

// DefaultFullName is stored when the identity provider gives no name.
const DefaultFullName = "User"

type ProfileStore interface {
	EnsureProfile(ctx context.Context, id, email, fullName string) (domain.Profile, error)
	GetProfile(ctx context.Context, id string) (domain.Profile, error)
	UpdateProfile(ctx context.Context, id, email, fullName string) (domain.Profile, error)
}

// ProfileCache maps a normalized identity ID to its canonical profile.
type ProfileCache interface {
	GetCachedProfile(ctx context.Context, key string) (domain.Profile, bool, error)
	CacheProfile(ctx context.Context, key string, p domain.Profile) error
	InvalidateProfile(ctx context.Context, key string) error
}

type ProfileService struct {
	store   ProfileStore
	cache   ProfileCache // nil when Redis is disabled
	metrics *metrics.Collector
	log     logger.Logger
}

func NewProfileService(store ProfileStore, cache ProfileCache, m *metrics.Collector, log logger.Logger) *ProfileService {
	return &ProfileService{store: store, cache: cache, metrics: m, log: log}
}

// Ensure resolves an identity-provider ID to its canonical profile, creating
// the profile on first sight. A second identity presenting an email that is
// already known adopts the existing profile.
func (s *ProfileService) Ensure(ctx context.Context, identityID, email, fullName string) (domain.Profile, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return domain.Profile{}, apperror.ValidationFailed("user_id", "user id is required")
	}
	id := identity.NormalizeUserID(identityID)

	if s.cache != nil {
		p, ok, err := s.cache.GetCachedProfile(ctx, id)
		switch {
		case err != nil:
			s.log.Warn("identity cache read failed", logger.String("id", id), logger.Error(err))
		case ok:
			s.metrics.CacheHit("identity")
			return p, nil
		default:
			s.metrics.CacheMiss("identity")
		}
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = DefaultFullName
	}

	p, err := s.store.EnsureProfile(ctx, id, email, fullName)
	if err != nil {
		return domain.Profile{}, err
	}
	if p.ID != id {
		// Adopted identities are not cached: Update can only invalidate the
		// key equal to the profile ID.
		s.log.Debug("identity adopted existing profile by email",
			logger.String("identity", id), logger.String("profile", p.ID))
		return p, nil
	}

	if s.cache != nil {
		if err := s.cache.CacheProfile(ctx, id, p); err != nil {
			s.log.Warn("identity cache write failed", logger.String("id", id), logger.Error(err))
		}
	}
	return p, nil
}

func (s *ProfileService) Get(ctx context.Context, id string) (domain.Profile, error) {
	return s.store.GetProfile(ctx, id)
}

// Update changes email and name. Empty values keep the stored ones.
func (s *ProfileService) Update(ctx context.Context, id, email, fullName string) (domain.Profile, error) {
	current, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = current.Email
	} else if !strings.Contains(email, "@") {
		return domain.Profile{}, apperror.ValidationFailed("email", "invalid email address")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = current.FullName
	}

	p, err := s.store.UpdateProfile(ctx, id, email, fullName)
	if err != nil {
		return domain.Profile{}, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateProfile(ctx, id); err != nil {
			s.log.Warn("identity cache invalidation failed", logger.String("id", id), logger.Error(err))
		}
	}
	return p, nil
}
