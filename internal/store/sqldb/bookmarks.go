package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

const bookmarkSelect = `
	SELECT b.id, b.user_id, b.url, b.title, b.description, b.notes, b.favicon_url,
		b.folder_id, COALESCE(f.name, ''), b.visit_count, b.last_visited_at,
		b.is_favorite, b.is_archived, b.position,
		b.goal_description, b.goal_type, b.goal_status, b.goal_priority,
		b.goal_progress, b.goal_notes, b.deadline_date,
		b.created_at, b.updated_at
	FROM bookmarks b
	LEFT JOIN folders f ON f.id = b.folder_id`

// Manually positioned bookmarks come first, the rest newest first.
const bookmarkOrder = `
	ORDER BY CASE WHEN b.position IS NULL THEN 1 ELSE 0 END, b.position, b.created_at DESC`

func scanBookmark(sc scanner) (domain.Bookmark, error) {
	var (
		b         domain.Bookmark
		folderID  sql.NullString
		lastVisit sql.NullTime
		position  sql.NullInt64
		deadline  sql.NullTime
	)
	err := sc.Scan(
		&b.ID, &b.UserID, &b.URL, &b.Title, &b.Description, &b.Notes, &b.FaviconURL,
		&folderID, &b.FolderName, &b.VisitCount, &lastVisit,
		&b.IsFavorite, &b.IsArchived, &position,
		&b.GoalDescription, &b.GoalType, &b.GoalStatus, &b.GoalPriority,
		&b.GoalProgress, &b.GoalNotes, &deadline,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return domain.Bookmark{}, err
	}
	if folderID.Valid {
		b.FolderID = &folderID.String
	}
	if lastVisit.Valid {
		t := lastVisit.Time
		b.LastVisitedAt = &t
	}
	if position.Valid {
		p := int(position.Int64)
		b.Position = &p
	}
	if deadline.Valid {
		t := deadline.Time
		b.DeadlineDate = &t
	}
	return b, nil
}

func collectBookmarks(rows *sql.Rows) ([]domain.Bookmark, error) {
	defer rows.Close()
	out := make([]domain.Bookmark, 0, 16)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListBookmarks returns the owner's bookmarks with folder names and tags.
func (s *Store) ListBookmarks(ctx context.Context, owner string, f domain.BookmarkFilter) ([]domain.Bookmark, error) {
	where := []string{"b.user_id = ?"}
	args := []any{owner}

	if f.FolderID != nil {
		if *f.FolderID == "" {
			where = append(where, "b.folder_id IS NULL")
		} else {
			where = append(where, "b.folder_id = ?")
			args = append(args, *f.FolderID)
		}
	}
	if f.IsFavorite != nil {
		where = append(where, "b.is_favorite = ?")
		args = append(args, *f.IsFavorite)
	}
	if f.IsArchived != nil {
		where = append(where, "b.is_archived = ?")
		args = append(args, *f.IsArchived)
	}

	query := bookmarkSelect + " WHERE " + strings.Join(where, " AND ") + bookmarkOrder
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	bookmarks, err := collectBookmarks(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// GetBookmark loads one bookmark of owner, tags included.
func (s *Store) GetBookmark(ctx context.Context, owner, id string) (domain.Bookmark, error) {
	query := s.rebind(bookmarkSelect + ` WHERE b.id = ? AND b.user_id = ?`)
	b, err := scanBookmark(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		return domain.Bookmark{}, notFound(err, "bookmark", id)
	}
	tags, err := s.BookmarkTags(ctx, b.ID)
	if err != nil {
		return domain.Bookmark{}, err
	}
	b.Tags = tags
	return b, nil
}

// GetBookmarkByID loads a bookmark regardless of owner, for ownership checks.
func (s *Store) GetBookmarkByID(ctx context.Context, id string) (domain.Bookmark, error) {
	query := s.rebind(bookmarkSelect + ` WHERE b.id = ?`)
	b, err := scanBookmark(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Bookmark{}, notFound(err, "bookmark", id)
	}
	return b, nil
}

// BookmarksByIDs returns the owner's bookmarks among ids, skipping unknown ones.
func (s *Store) BookmarksByIDs(ctx context.Context, owner string, ids []string) ([]domain.Bookmark, error) {
	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}
	query := bookmarkSelect + ` WHERE b.user_id = ? AND b.id IN (` + placeholders(len(ids)) + `)` + bookmarkOrder
	args := append([]any{owner}, stringArgs(ids)...)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("bookmarks by ids: %w", err)
	}
	bookmarks, err := collectBookmarks(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

func (s *Store) attachTags(ctx context.Context, bookmarks []domain.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}
	ids := make([]string, len(bookmarks))
	for i := range bookmarks {
		ids[i] = bookmarks[i].ID
	}
	byBookmark, err := s.TagsForBookmarks(ctx, ids)
	if err != nil {
		return err
	}
	for i := range bookmarks {
		bookmarks[i].Tags = byBookmark[bookmarks[i].ID]
	}
	return nil
}

// CreateBookmark inserts b, assigning id, timestamps and goal defaults.
func (s *Store) CreateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	if err := s.insertBookmark(ctx, s.db, &b); err != nil {
		return domain.Bookmark{}, err
	}
	return s.GetBookmark(ctx, b.UserID, b.ID)
}

func (s *Store) insertBookmark(ctx context.Context, q querier, b *domain.Bookmark) error {
	now := s.timestamp()
	if b.ID == "" {
		b.ID = newID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	} else {
		b.CreatedAt = b.CreatedAt.UTC()
	}
	b.UpdatedAt = now
	if b.GoalStatus == "" {
		b.GoalStatus = domain.GoalPending
	}
	if b.GoalPriority == "" {
		b.GoalPriority = domain.PriorityMedium
	}

	_, err := q.ExecContext(ctx, s.rebind(`
		INSERT INTO bookmarks (
			id, user_id, url, title, description, notes, favicon_url, folder_id,
			visit_count, last_visited_at, is_favorite, is_archived, position,
			goal_description, goal_type, goal_status, goal_priority, goal_progress,
			goal_notes, deadline_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		b.ID, b.UserID, b.URL, b.Title, b.Description, b.Notes, b.FaviconURL, nullableID(b.FolderID),
		b.VisitCount, nullTime(b.LastVisitedAt), b.IsFavorite, b.IsArchived, nullInt(b.Position),
		b.GoalDescription, b.GoalType, b.GoalStatus, b.GoalPriority, b.GoalProgress,
		b.GoalNotes, nullTime(b.DeadlineDate), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// UpdateBookmark applies the non-nil fields of p.
func (s *Store) UpdateBookmark(ctx context.Context, owner, id string, p domain.BookmarkPatch) (domain.Bookmark, error) {
	sets := make([]string, 0, 16)
	args := make([]any, 0, 18)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.URL != nil {
		set("url", *p.URL)
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}
	if p.FaviconURL != nil {
		set("favicon_url", *p.FaviconURL)
	}
	if p.FolderID != nil {
		set("folder_id", nullableID(p.FolderID))
	}
	if p.IsFavorite != nil {
		set("is_favorite", *p.IsFavorite)
	}
	if p.IsArchived != nil {
		set("is_archived", *p.IsArchived)
	}
	if p.GoalDescription != nil {
		set("goal_description", *p.GoalDescription)
	}
	if p.GoalType != nil {
		set("goal_type", *p.GoalType)
	}
	if p.GoalStatus != nil {
		set("goal_status", *p.GoalStatus)
	}
	if p.GoalPriority != nil {
		set("goal_priority", *p.GoalPriority)
	}
	if p.GoalProgress != nil {
		set("goal_progress", *p.GoalProgress)
	}
	if p.GoalNotes != nil {
		set("goal_notes", *p.GoalNotes)
	}
	if p.DeadlineDate != nil {
		set("deadline_date", p.DeadlineDate.UTC())
	}
	set("updated_at", s.timestamp())

	args = append(args, id, owner)
	query := `UPDATE bookmarks SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND user_id = ?`

	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("update bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Bookmark{}, apperror.NotFound("bookmark", id)
	}
	return s.GetBookmark(ctx, owner, id)
}

// DeleteBookmarks removes the owner's bookmarks among ids together with
// their tag links and relationship edges. It returns the number deleted.
func (s *Store) DeleteBookmarks(ctx context.Context, owner string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		owned, err := s.ownedBookmarkIDs(ctx, tx, owner, ids)
		if err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}

		in := placeholders(len(owned))
		args := stringArgs(owned)

		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM bookmark_tags WHERE bookmark_id IN (`+in+`)`), args...); err != nil {
			return fmt.Errorf("delete bookmark tags: %w", err)
		}
		relArgs := append(append([]any{}, args...), args...)
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM bookmark_relationships WHERE bookmark_id IN (`+in+`) OR related_bookmark_id IN (`+in+`)`), relArgs...); err != nil {
			return fmt.Errorf("delete bookmark relationships: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM bookmarks WHERE id IN (`+in+`)`), args...)
		if err != nil {
			return fmt.Errorf("delete bookmarks: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

func (s *Store) ownedBookmarkIDs(ctx context.Context, q querier, owner string, ids []string) ([]string, error) {
	query := `SELECT id FROM bookmarks WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	rows, err := q.QueryContext(ctx, s.rebind(query), append([]any{owner}, stringArgs(ids)...)...)
	if err != nil {
		return nil, fmt.Errorf("owned bookmarks: %w", err)
	}
	defer rows.Close()

	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owned = append(owned, id)
	}
	return owned, rows.Err()
}

// SearchBookmarks returns bookmarks whose title, url, description or notes
// contain q, case-insensitively. Ranking is left to the caller.
func (s *Store) SearchBookmarks(ctx context.Context, owner, q string, limit int) ([]domain.Bookmark, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
	query := bookmarkSelect + `
		WHERE b.user_id = ? AND (
			LOWER(b.title) LIKE ? ESCAPE '\' OR
			LOWER(b.url) LIKE ? ESCAPE '\' OR
			LOWER(b.description) LIKE ? ESCAPE '\' OR
			LOWER(b.notes) LIKE ? ESCAPE '\'
		)` + bookmarkOrder
	args := []any{owner, pattern, pattern, pattern, pattern}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("search bookmarks: %w", err)
	}
	bookmarks, err := collectBookmarks(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// ReorderBookmark gives sourceID the position and shifts the owner's
// positioned bookmarks at or after it by one.
func (s *Store) ReorderBookmark(ctx context.Context, owner, sourceID string, position int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM bookmarks WHERE id = ? AND user_id = ?`), sourceID, owner).Scan(&exists)
		if err != nil {
			return fmt.Errorf("reorder lookup: %w", err)
		}
		if exists == 0 {
			return apperror.NotFound("bookmark", sourceID)
		}

		now := s.timestamp()
		if _, err := tx.ExecContext(ctx, s.rebind(`
			UPDATE bookmarks SET position = position + 1, updated_at = ?
			WHERE user_id = ? AND position IS NOT NULL AND position >= ? AND id <> ?`),
			now, owner, position, sourceID); err != nil {
			return fmt.Errorf("shift positions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`
			UPDATE bookmarks SET position = ?, updated_at = ? WHERE id = ? AND user_id = ?`),
			position, now, sourceID, owner); err != nil {
			return fmt.Errorf("set position: %w", err)
		}
		return nil
	})
}

// RecordVisit bumps the visit counter and stamps last_visited_at.
func (s *Store) RecordVisit(ctx context.Context, owner, id string) (domain.Bookmark, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE bookmarks SET visit_count = visit_count + 1, last_visited_at = ?
		WHERE id = ? AND user_id = ?`), s.timestamp(), id, owner)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("record visit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Bookmark{}, apperror.NotFound("bookmark", id)
	}
	return s.GetBookmark(ctx, owner, id)
}

// ExistingURLs maps each of the owner's URLs to its bookmark id.
func (s *Store) ExistingURLs(ctx context.Context, owner string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, url FROM bookmarks WHERE user_id = ?`), owner)
	if err != nil {
		return nil, fmt.Errorf("existing urls: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]string)
	for rows.Next() {
		var id, u string
		if err := rows.Scan(&id, &u); err != nil {
			return nil, err
		}
		urls[u] = id
	}
	return urls, rows.Err()
}

// LinkTargetsPage pages through every bookmark by id, across owners.
func (s *Store) LinkTargetsPage(ctx context.Context, afterID string, limit int) ([]domain.LinkTarget, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, url FROM bookmarks
		WHERE id > ? AND is_archived = ?
		ORDER BY id LIMIT ?`), afterID, false, limit)
	if err != nil {
		return nil, fmt.Errorf("link targets: %w", err)
	}
	defer rows.Close()

	out := make([]domain.LinkTarget, 0, limit)
	for rows.Next() {
		var t domain.LinkTarget
		if err := rows.Scan(&t.BookmarkID, &t.UserID, &t.URL); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
