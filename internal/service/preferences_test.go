package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
)

func strPtr(s string) *string { return &s }

func TestPreferenceService(t *testing.T) {
	store := newStore(t)
	owner := newOwner(t, store, "u")
	svc := NewPreferenceService(store)
	ctx := context.Background()

	p, err := svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "system", p.Theme)
	assert.Equal(t, "grid", p.ViewMode)

	_, err = svc.Upsert(ctx, owner, strPtr("neon"), nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = svc.Upsert(ctx, owner, nil, strPtr("table"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	p, err = svc.Upsert(ctx, owner, strPtr("dark"), nil)
	require.NoError(t, err)
	assert.Equal(t, "dark", p.Theme)
	assert.Equal(t, "grid", p.ViewMode)

	p, err = svc.Upsert(ctx, owner, nil, strPtr("kanban"))
	require.NoError(t, err)
	assert.Equal(t, "dark", p.Theme)
	assert.Equal(t, "kanban", p.ViewMode)
}
