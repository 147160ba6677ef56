package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
)

func TestRelationshipCreate_ValidationOrder(t *testing.T) {
	store := newStore(t)
	owner := newOwner(t, store, "u")
	other := newOwner(t, store, "other")
	bookmarks := NewBookmarkService(store, nil, nil, logger.NewNop())
	svc := NewRelationshipService(store, nil)

	a := mustCreate(t, bookmarks, owner, "A", "https://a.example")
	foreign := mustCreate(t, bookmarks, other, "F", "https://f.example")
	missing := "00000000-0000-4000-8000-000000000000"

	tests := []struct {
		name    string
		a, b    string
		kind    error
		message string
	}{
		{"self", a.ID, a.ID, apperror.ErrValidation, "a bookmark cannot be related to itself"},
		{"self even when invalid", "x", "x", apperror.ErrValidation, "a bookmark cannot be related to itself"},
		{"bad first id", "nope", a.ID, apperror.ErrValidation, "invalid bookmark ID format: nope"},
		{"bad second id", a.ID, "nope", apperror.ErrValidation, "invalid bookmark ID format: nope"},
		{"missing source", missing, a.ID, apperror.ErrNotFound, "bookmark not found"},
		{"missing target", a.ID, missing, apperror.ErrNotFound, "related bookmark not found"},
		{"foreign target", a.ID, foreign.ID, apperror.ErrForbidden, ""},
		{"foreign source", foreign.ID, a.ID, apperror.ErrForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Create(context.Background(), owner, tt.a, tt.b, "")
			require.ErrorIs(t, err, tt.kind)
			if tt.message != "" {
				assert.EqualError(t, err, tt.message)
			}
		})
	}

	_, _, err := svc.Create(context.Background(), owner, a.ID, mustCreate(t, bookmarks, owner, "B", "https://b.example").ID, "friend")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRelationshipCreate_DuplicateAndListing(t *testing.T) {
	store := newStore(t)
	owner := newOwner(t, store, "u")
	bookmarks := NewBookmarkService(store, nil, nil, logger.NewNop())
	svc := NewRelationshipService(store, metrics.New())
	ctx := context.Background()

	a := mustCreate(t, bookmarks, owner, "A", "https://a.example")
	b := mustCreate(t, bookmarks, owner, "B", "https://b.example")
	c := mustCreate(t, bookmarks, owner, "C", "https://c.example")

	rel, created, err := svc.Create(ctx, owner, a.ID, b.ID, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RelationRelated, rel.RelationshipType)

	again, created, err := svc.Create(ctx, owner, a.ID, b.ID, domain.RelationSimilar)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rel.ID, again.ID)

	_, _, err = svc.Create(ctx, owner, c.ID, a.ID, domain.RelationReference)
	require.NoError(t, err)

	edges, err := svc.ForBookmark(ctx, owner, a.ID)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	directions := map[string]string{}
	for _, e := range edges {
		directions[e.OtherID] = e.Direction
	}
	assert.Equal(t, "outgoing", directions[b.ID])
	assert.Equal(t, "incoming", directions[c.ID])

	related, err := svc.Related(ctx, owner, a.ID)
	require.NoError(t, err)
	assert.Len(t, related, 2)

	d := mustCreate(t, bookmarks, owner, "D", "https://d.example")
	cands, err := svc.Candidates(ctx, owner, a.ID, "")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, d.ID, cands[0].ID)

	require.NoError(t, svc.Delete(ctx, owner, b.ID, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, b.ID, a.ID), apperror.ErrNotFound)
}
