package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
)

func TestCapsuleService(t *testing.T) {
	store := newStore(t)
	owner := newOwner(t, store, "u")
	bookmarks := NewBookmarkService(store, nil, nil, logger.NewNop())
	svc := NewCapsuleService(store)
	ctx := context.Background()

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCapsules)
	assert.Nil(t, stats.OldestCapsule)

	_, err = svc.Create(ctx, owner, domain.CapsuleInput{Name: " "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	mustCreate(t, bookmarks, owner, "A", "https://a.example")
	mustCreate(t, bookmarks, owner, "B", "https://b.example")
	first, err := svc.Create(ctx, owner, domain.CapsuleInput{Name: "Two"})
	require.NoError(t, err)
	assert.Equal(t, 2, first.BookmarkCount)

	mustCreate(t, bookmarks, owner, "C", "https://c.example")
	_, err = svc.Create(ctx, owner, domain.CapsuleInput{Name: "Three"})
	require.NoError(t, err)

	stats, err = svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCapsules)
	assert.Equal(t, 5, stats.TotalBookmarksInCapsules)
	assert.Equal(t, 2.5, stats.AverageBookmarksPerCapsule)
	require.NotNil(t, stats.OldestCapsule)
	require.NotNil(t, stats.NewestCapsule)
	assert.False(t, stats.NewestCapsule.Before(*stats.OldestCapsule))

	blank := ""
	_, err = svc.Update(ctx, owner, first.ID, &blank, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	res, err := svc.Restore(ctx, owner, first.ID, domain.RestoreOptions{FolderID: &blank, SkipExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Restored)
	assert.Equal(t, 2, res.Skipped)

	require.NoError(t, svc.Delete(ctx, owner, first.ID))
	_, err = svc.Get(ctx, owner, first.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
