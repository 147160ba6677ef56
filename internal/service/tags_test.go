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

func TestTagCreate(t *testing.T) {
	store := newStore(t)
	owner := newOwner(t, store, "u")
	svc := NewTagService(store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, " ", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = svc.Create(ctx, owner, "go", "blue")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	first, err := svc.Create(ctx, owner, "go", "#00ADD8")
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, "go", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	byName, err := svc.GetByName(ctx, owner, "go")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byName.ID)
}

func TestTagBookmarkLinks(t *testing.T) {
	store := newStore(t)
	owner := newOwner(t, store, "u")
	other := newOwner(t, store, "other")
	events := &eventLog{}
	svc := NewTagService(store, events)
	bookmarks := NewBookmarkService(store, nil, nil, logger.NewNop())
	ctx := context.Background()

	b := mustCreate(t, bookmarks, owner, "A", "https://a.example")
	foreignBookmark := mustCreate(t, bookmarks, other, "F", "https://f.example")
	tag, err := svc.Create(ctx, owner, "go", "")
	require.NoError(t, err)
	foreignTag, err := svc.Create(ctx, other, "x", "")
	require.NoError(t, err)

	_, err = svc.AddToBookmark(ctx, owner, b.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = svc.AddToBookmark(ctx, owner, foreignBookmark.ID, []string{tag.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.AddToBookmark(ctx, owner, b.ID, []string{foreignTag.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	tags, err := svc.AddToBookmark(ctx, owner, b.ID, []string{tag.ID})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	tags, err = svc.AddToBookmark(ctx, owner, b.ID, []string{tag.ID})
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	tags, err = svc.RemoveFromBookmark(ctx, owner, b.ID, []string{tag.ID})
	require.NoError(t, err)
	assert.Empty(t, tags)

	assert.Equal(t, []string{domain.EventTagAdded, domain.EventTagAdded, domain.EventTagRemoved}, events.types())

	require.NoError(t, svc.Delete(ctx, owner, tag.ID))
	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}
