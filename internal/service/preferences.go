package service

import (
	"context"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (domain.Preferences, error)
	UpsertPreferences(ctx context.Context, userID string, p domain.Preferences) (domain.Preferences, error)
}

type PreferenceService struct {
	store PreferenceStore
}

func NewPreferenceService(store PreferenceStore) *PreferenceService {
	return &PreferenceService{store: store}
}

// Get returns the stored preferences, or the defaults when none were saved.
func (s *PreferenceService) Get(ctx context.Context, owner string) (domain.Preferences, error) {
	return s.store.GetPreferences(ctx, owner)
}

// Upsert validates and saves. Nil fields keep their current value.
func (s *PreferenceService) Upsert(ctx context.Context, owner string, theme, viewMode *string) (domain.Preferences, error) {
	if theme != nil && !domain.IsValidTheme(*theme) {
		return domain.Preferences{}, apperror.ValidationFailed("theme", "theme must be one of light, dark, system")
	}
	if viewMode != nil && !domain.IsValidViewMode(*viewMode) {
		return domain.Preferences{}, apperror.ValidationFailed("view_mode", "view_mode must be one of grid, list, kanban")
	}

	current, err := s.store.GetPreferences(ctx, owner)
	if err != nil {
		return domain.Preferences{}, err
	}
	if theme != nil {
		current.Theme = *theme
	}
	if viewMode != nil {
		current.ViewMode = *viewMode
	}
	return s.store.UpsertPreferences(ctx, owner, current)
}
