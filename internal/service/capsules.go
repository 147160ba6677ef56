package service

import (
	"context"
	"math"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

type CapsuleStore interface {
	CreateCapsule(ctx context.Context, owner string, in domain.CapsuleInput) (domain.TimeCapsule, error)
	ListCapsules(ctx context.Context, owner string) ([]domain.TimeCapsule, error)
	GetCapsule(ctx context.Context, owner, id string) (domain.TimeCapsule, error)
	UpdateCapsule(ctx context.Context, owner, id string, name, description *string) (domain.TimeCapsule, error)
	DeleteCapsule(ctx context.Context, owner, id string) error
	RestoreCapsule(ctx context.Context, owner, id string, opts domain.RestoreOptions) (domain.RestoreResult, error)
}

type CapsuleService struct {
	store CapsuleStore
}

func NewCapsuleService(store CapsuleStore) *CapsuleService {
	return &CapsuleService{store: store}
}

func (s *CapsuleService) Create(ctx context.Context, owner string, in domain.CapsuleInput) (domain.TimeCapsule, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.TimeCapsule{}, apperror.ValidationFailed("name", "capsule name is required")
	}
	in.FolderIDs = dedupe(in.FolderIDs)
	return s.store.CreateCapsule(ctx, owner, in)
}

func (s *CapsuleService) List(ctx context.Context, owner string) ([]domain.TimeCapsule, error) {
	return s.store.ListCapsules(ctx, owner)
}

func (s *CapsuleService) Get(ctx context.Context, owner, id string) (domain.TimeCapsule, error) {
	return s.store.GetCapsule(ctx, owner, id)
}

func (s *CapsuleService) Update(ctx context.Context, owner, id string, name, description *string) (domain.TimeCapsule, error) {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return domain.TimeCapsule{}, apperror.ValidationFailed("name", "capsule name cannot be empty")
		}
		name = &n
	}
	return s.store.UpdateCapsule(ctx, owner, id, name, description)
}

func (s *CapsuleService) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteCapsule(ctx, owner, id)
}

func (s *CapsuleService) Restore(ctx context.Context, owner, id string, opts domain.RestoreOptions) (domain.RestoreResult, error) {
	if opts.FolderID != nil && *opts.FolderID == "" {
		opts.FolderID = nil
	}
	return s.store.RestoreCapsule(ctx, owner, id, opts)
}

// Stats summarizes the owner's capsules.
func (s *CapsuleService) Stats(ctx context.Context, owner string) (domain.CapsuleStats, error) {
	capsules, err := s.store.ListCapsules(ctx, owner)
	if err != nil {
		return domain.CapsuleStats{}, err
	}

	stats := domain.CapsuleStats{TotalCapsules: len(capsules)}
	for i := range capsules {
		c := &capsules[i]
		stats.TotalBookmarksInCapsules += c.BookmarkCount
		if stats.OldestCapsule == nil || c.SnapshotDate.Before(*stats.OldestCapsule) {
			stats.OldestCapsule = &c.SnapshotDate
		}
		if stats.NewestCapsule == nil || c.SnapshotDate.After(*stats.NewestCapsule) {
			stats.NewestCapsule = &c.SnapshotDate
		}
	}
	if len(capsules) > 0 {
		avg := float64(stats.TotalBookmarksInCapsules) / float64(len(capsules))
		stats.AverageBookmarksPerCapsule = math.Round(avg*100) / 100
	}
	return stats, nil
}
