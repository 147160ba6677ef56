package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

const tagColumns = `id, user_id, name, color, created_at`

func scanTag(sc scanner) (domain.Tag, error) {
	var t domain.Tag
	err := sc.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt)
	return t, err
}

func (s *Store) queryTags(ctx context.Context, q querier, query string, args ...any) ([]domain.Tag, error) {
	rows, err := q.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Tag, 0, 8)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ListTags(ctx context.Context, owner string) ([]domain.Tag, error) {
	return s.queryTags(ctx, s.db, `SELECT `+tagColumns+` FROM tags WHERE user_id = ? ORDER BY name`, owner)
}

func (s *Store) GetTagByName(ctx context.Context, owner, name string) (domain.Tag, error) {
	t, err := scanTag(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+tagColumns+` FROM tags WHERE user_id = ? AND name = ?`), owner, name))
	if err != nil {
		return domain.Tag{}, notFound(err, "tag", name)
	}
	return t, nil
}

// TagsByIDs returns the owner's tags among ids. Foreign or unknown ids are dropped.
func (s *Store) TagsByIDs(ctx context.Context, owner string, ids []string) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}
	query := `SELECT ` + tagColumns + ` FROM tags WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `) ORDER BY name`
	return s.queryTags(ctx, s.db, query, append([]any{owner}, stringArgs(ids)...)...)
}

// CreateTag inserts t, or returns the tag that already has its name.
func (s *Store) CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	return s.createTag(ctx, s.db, t)
}

func (s *Store) createTag(ctx context.Context, q querier, t domain.Tag) (domain.Tag, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.Color == "" {
		t.Color = domain.DefaultTagColor
	}
	t.CreatedAt = s.timestamp()

	query := s.rebind(`
		INSERT INTO tags (id, user_id, name, color, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, name) DO NOTHING
		RETURNING ` + tagColumns)

	created, err := scanTag(q.QueryRowContext(ctx, query, t.ID, t.UserID, t.Name, t.Color, t.CreatedAt))
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Tag{}, fmt.Errorf("insert tag: %w", err)
	}

	existing, err := scanTag(q.QueryRowContext(ctx, s.rebind(`SELECT `+tagColumns+` FROM tags WHERE user_id = ? AND name = ?`), t.UserID, t.Name))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("load existing tag: %w", err)
	}
	return existing, nil
}

// DeleteTag removes the tag and every link to it.
func (s *Store) DeleteTag(ctx context.Context, owner, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`
			DELETE FROM bookmark_tags WHERE tag_id IN (SELECT id FROM tags WHERE id = ? AND user_id = ?)`), id, owner); err != nil {
			return fmt.Errorf("delete tag links: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM tags WHERE id = ? AND user_id = ?`), id, owner)
		if err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperror.NotFound("tag", id)
		}
		return nil
	})
}

// AddTagsToBookmark links tags to a bookmark. Existing links are left alone.
func (s *Store) AddTagsToBookmark(ctx context.Context, bookmarkID string, tagIDs []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.linkTags(ctx, tx, bookmarkID, tagIDs)
	})
}

func (s *Store) linkTags(ctx context.Context, q querier, bookmarkID string, tagIDs []string) error {
	now := s.timestamp()
	for _, tagID := range tagIDs {
		if _, err := q.ExecContext(ctx, s.rebind(`
			INSERT INTO bookmark_tags (bookmark_id, tag_id, created_at) VALUES (?, ?, ?)
			ON CONFLICT (bookmark_id, tag_id) DO NOTHING`), bookmarkID, tagID, now); err != nil {
			return fmt.Errorf("link tag %s: %w", tagID, err)
		}
	}
	return nil
}

func (s *Store) RemoveTagsFromBookmark(ctx context.Context, bookmarkID string, tagIDs []string) (int64, error) {
	if len(tagIDs) == 0 {
		return 0, nil
	}
	query := `DELETE FROM bookmark_tags WHERE bookmark_id = ? AND tag_id IN (` + placeholders(len(tagIDs)) + `)`
	res, err := s.db.ExecContext(ctx, s.rebind(query), append([]any{bookmarkID}, stringArgs(tagIDs)...)...)
	if err != nil {
		return 0, fmt.Errorf("unlink tags: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) BookmarkTags(ctx context.Context, bookmarkID string) ([]domain.Tag, error) {
	return s.queryTags(ctx, s.db, `
		SELECT t.id, t.user_id, t.name, t.color, t.created_at
		FROM tags t JOIN bookmark_tags bt ON bt.tag_id = t.id
		WHERE bt.bookmark_id = ? ORDER BY t.name`, bookmarkID)
}

// TagsForBookmarks groups the tags of many bookmarks by bookmark id.
func (s *Store) TagsForBookmarks(ctx context.Context, bookmarkIDs []string) (map[string][]domain.Tag, error) {
	return s.tagsForBookmarks(ctx, s.db, bookmarkIDs)
}

func (s *Store) tagsForBookmarks(ctx context.Context, q querier, bookmarkIDs []string) (map[string][]domain.Tag, error) {
	out := make(map[string][]domain.Tag, len(bookmarkIDs))
	if len(bookmarkIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT bt.bookmark_id, t.id, t.user_id, t.name, t.color, t.created_at
		FROM bookmark_tags bt JOIN tags t ON t.id = bt.tag_id
		WHERE bt.bookmark_id IN (` + placeholders(len(bookmarkIDs)) + `)
		ORDER BY t.name`
	rows, err := q.QueryContext(ctx, s.rebind(query), stringArgs(bookmarkIDs)...)
	if err != nil {
		return nil, fmt.Errorf("tags for bookmarks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookmarkID string
			t          domain.Tag
		)
		if err := rows.Scan(&bookmarkID, &t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		out[bookmarkID] = append(out[bookmarkID], t)
	}
	return out, rows.Err()
}

// normalizeTagName trims and collapses a user supplied tag name.
func normalizeTagName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
