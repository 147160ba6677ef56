package sqldb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/identity"
)

func TestCommitImport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustProfile(t, s, identity.NormalizeUserID("owner"), "").ID

	existing, err := s.CreateFolder(ctx, domain.Folder{UserID: owner, Name: "Dev"})
	require.NoError(t, err)
	mustBookmark(t, s, owner, "Already", "https://already.example")

	added := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)
	items := []domain.ImportedBookmark{
		{Title: "Go", URL: "https://go.dev", FolderPath: "Dev/Languages", Tags: []string{"go", " lang "}, CreatedAt: &added},
		{Title: "Rust", URL: "https://rust-lang.org", FolderPath: "Dev/Languages", Tags: []string{"lang"}},
		{Title: "Already", URL: "https://already.example"},
		{Title: "Loose", URL: "https://loose.example"},
	}

	out, created, err := s.CommitImport(ctx, owner, items)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Created)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, 1, out.FoldersCreated)
	assert.Equal(t, 3, out.TagsLinked)
	require.Len(t, created, 3)

	langs, err := s.ListChildFolders(ctx, owner, &existing.ID)
	require.NoError(t, err)
	require.Len(t, langs, 1)
	assert.Equal(t, "Languages", langs[0].Name)

	inLangs, err := s.ListBookmarks(ctx, owner, domain.BookmarkFilter{FolderID: &langs[0].ID})
	require.NoError(t, err)
	require.Len(t, inLangs, 2)

	goBookmark, err := s.GetBookmark(ctx, owner, created[0].ID)
	require.NoError(t, err)
	assert.True(t, goBookmark.CreatedAt.Equal(added))
	require.Len(t, goBookmark.Tags, 2)

	tags, err := s.ListTags(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	// A second run writes nothing new.
	out, _, err = s.CommitImport(ctx, owner, items)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Created)
	assert.Equal(t, 4, out.Skipped)
}

func TestReassignUserID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	legacy := mustProfile(t, s, "legacy-raw-id", "").ID
	owner := mustProfile(t, s, identity.NormalizeUserID("owner"), "").ID

	mustBookmark(t, s, legacy, "a", "https://a.example")
	mustBookmark(t, s, legacy, "b", "https://b.example")
	_, err := s.CreateFolder(ctx, domain.Folder{UserID: legacy, Name: "F"})
	require.NoError(t, err)
	_, err = s.CreateTag(ctx, domain.Tag{UserID: legacy, Name: "t"})
	require.NoError(t, err)

	counts, err := s.ReassignUserIDs(ctx, []string{legacy}, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts["bookmarks"])
	assert.EqualValues(t, 1, counts["folders"])
	assert.EqualValues(t, 1, counts["tags"])
	assert.EqualValues(t, 0, counts["time_capsules"])

	list, err := s.ListBookmarks(ctx, owner, domain.BookmarkFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Tag names are unique per owner, so a clash rolls everything back.
	_, err = s.CreateTag(ctx, domain.Tag{UserID: legacy, Name: "t"})
	require.NoError(t, err)
	mustBookmark(t, s, legacy, "c", "https://c.example")
	_, err = s.ReassignUserIDs(ctx, []string{legacy}, owner)
	require.ErrorIs(t, err, apperror.ErrConflict)

	left, err := s.ListBookmarks(ctx, legacy, domain.BookmarkFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestReassignUserIDs_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	raw := mustProfile(t, s, "legacy-raw-id", "").ID
	normalized := mustProfile(t, s, identity.NormalizeUserID("legacy-raw-id"), "").ID
	owner := mustProfile(t, s, identity.NormalizeUserID("owner"), "").ID

	mustBookmark(t, s, raw, "a", "https://a.example")
	_, err := s.CreateTag(ctx, domain.Tag{UserID: normalized, Name: "t"})
	require.NoError(t, err)
	_, err = s.CreateTag(ctx, domain.Tag{UserID: owner, Name: "t"})
	require.NoError(t, err)

	// The second source clashes on the tag name, so the first must not move either.
	_, err = s.ReassignUserIDs(ctx, []string{raw, normalized}, owner)
	require.ErrorIs(t, err, apperror.ErrConflict)

	left, err := s.ListBookmarks(ctx, raw, domain.BookmarkFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
	moved, err := s.ListBookmarks(ctx, owner, domain.BookmarkFilter{})
	require.NoError(t, err)
	assert.Empty(t, moved)
}
