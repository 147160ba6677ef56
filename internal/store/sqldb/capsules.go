package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

const capsuleColumns = `id, user_id, name, description, snapshot_date, bookmark_count, folder_count, tag_count, created_at, updated_at`

func scanCapsule(sc scanner) (domain.TimeCapsule, error) {
	var c domain.TimeCapsule
	err := sc.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.SnapshotDate,
		&c.BookmarkCount, &c.FolderCount, &c.TagCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCapsule snapshots the owner's bookmarks and their tags in one transaction.
func (s *Store) CreateCapsule(ctx context.Context, owner string, in domain.CapsuleInput) (domain.TimeCapsule, error) {
	var capsule domain.TimeCapsule

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		where := []string{"b.user_id = ?"}
		args := []any{owner}
		if !in.IncludeArchived {
			where = append(where, "b.is_archived = ?")
			args = append(args, false)
		}
		if len(in.FolderIDs) > 0 {
			where = append(where, "(b.folder_id IS NULL OR b.folder_id IN ("+placeholders(len(in.FolderIDs))+"))")
			args = append(args, stringArgs(in.FolderIDs)...)
		}

		rows, err := tx.QueryContext(ctx, s.rebind(bookmarkSelect+" WHERE "+strings.Join(where, " AND ")+bookmarkOrder), args...)
		if err != nil {
			return fmt.Errorf("snapshot bookmarks: %w", err)
		}
		bookmarks, err := collectBookmarks(rows)
		if err != nil {
			return err
		}

		ids := make([]string, len(bookmarks))
		for i := range bookmarks {
			ids[i] = bookmarks[i].ID
		}
		tags, err := s.tagsForBookmarks(ctx, tx, ids)
		if err != nil {
			return err
		}

		folders := make(map[string]bool)
		tagNames := make(map[string]bool)
		for _, b := range bookmarks {
			if b.FolderID != nil {
				folders[*b.FolderID] = true
			}
			for _, t := range tags[b.ID] {
				tagNames[t.Name] = true
			}
		}

		now := s.timestamp()
		capsule = domain.TimeCapsule{
			ID:            newID(),
			UserID:        owner,
			Name:          in.Name,
			Description:   in.Description,
			SnapshotDate:  now,
			BookmarkCount: len(bookmarks),
			FolderCount:   len(folders),
			TagCount:      len(tagNames),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO time_capsules (`+capsuleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			capsule.ID, capsule.UserID, capsule.Name, capsule.Description, capsule.SnapshotDate,
			capsule.BookmarkCount, capsule.FolderCount, capsule.TagCount, capsule.CreatedAt, capsule.UpdatedAt); err != nil {
			return fmt.Errorf("insert capsule: %w", err)
		}

		for _, b := range bookmarks {
			cb := domain.CapsuleBookmark{
				ID:                 newID(),
				CapsuleID:          capsule.ID,
				OriginalBookmarkID: b.ID,
				Title:              b.Title,
				URL:                b.URL,
				Description:        b.Description,
				FaviconURL:         b.FaviconURL,
				FolderName:         b.FolderName,
				IsFavorite:         b.IsFavorite,
				VisitCount:         b.VisitCount,
				LastVisitedAt:      b.LastVisitedAt,
			}
			if _, err := tx.ExecContext(ctx, s.rebind(`
				INSERT INTO time_capsule_bookmarks (
					id, capsule_id, original_bookmark_id, title, url, description,
					favicon_url, folder_name, is_favorite, visit_count, last_visited_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				cb.ID, cb.CapsuleID, cb.OriginalBookmarkID, cb.Title, cb.URL, cb.Description,
				cb.FaviconURL, cb.FolderName, cb.IsFavorite, cb.VisitCount, nullTime(cb.LastVisitedAt)); err != nil {
				return fmt.Errorf("insert capsule bookmark: %w", err)
			}

			for _, t := range tags[b.ID] {
				if _, err := tx.ExecContext(ctx, s.rebind(`
					INSERT INTO time_capsule_tags (id, capsule_bookmark_id, tag_name, tag_color) VALUES (?, ?, ?, ?)`),
					newID(), cb.ID, t.Name, t.Color); err != nil {
					return fmt.Errorf("insert capsule tag: %w", err)
				}
				cb.Tags = append(cb.Tags, domain.CapsuleTag{CapsuleBookmarkID: cb.ID, TagName: t.Name, TagColor: t.Color})
			}
			capsule.Bookmarks = append(capsule.Bookmarks, cb)
		}
		return nil
	})
	if err != nil {
		return domain.TimeCapsule{}, err
	}
	return capsule, nil
}

func (s *Store) ListCapsules(ctx context.Context, owner string) ([]domain.TimeCapsule, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+capsuleColumns+` FROM time_capsules WHERE user_id = ? ORDER BY snapshot_date DESC`), owner)
	if err != nil {
		return nil, fmt.Errorf("list capsules: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TimeCapsule, 0, 4)
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan capsule: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCapsule loads a capsule with its bookmark and tag snapshots.
func (s *Store) GetCapsule(ctx context.Context, owner, id string) (domain.TimeCapsule, error) {
	c, err := scanCapsule(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+capsuleColumns+` FROM time_capsules WHERE id = ? AND user_id = ?`), id, owner))
	if err != nil {
		return domain.TimeCapsule{}, notFound(err, "time capsule", id)
	}
	bookmarks, err := s.capsuleBookmarks(ctx, s.db, c.ID)
	if err != nil {
		return domain.TimeCapsule{}, err
	}
	c.Bookmarks = bookmarks
	return c, nil
}

func (s *Store) capsuleBookmarks(ctx context.Context, q querier, capsuleID string) ([]domain.CapsuleBookmark, error) {
	rows, err := q.QueryContext(ctx, s.rebind(`
		SELECT id, capsule_id, original_bookmark_id, title, url, description,
			favicon_url, folder_name, is_favorite, visit_count, last_visited_at
		FROM time_capsule_bookmarks WHERE capsule_id = ? ORDER BY title`), capsuleID)
	if err != nil {
		return nil, fmt.Errorf("capsule bookmarks: %w", err)
	}

	bookmarks := make([]domain.CapsuleBookmark, 0, 16)
	index := make(map[string]int)
	for rows.Next() {
		var (
			cb        domain.CapsuleBookmark
			lastVisit sql.NullTime
		)
		if err := rows.Scan(&cb.ID, &cb.CapsuleID, &cb.OriginalBookmarkID, &cb.Title, &cb.URL, &cb.Description,
			&cb.FaviconURL, &cb.FolderName, &cb.IsFavorite, &cb.VisitCount, &lastVisit); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan capsule bookmark: %w", err)
		}
		if lastVisit.Valid {
			t := lastVisit.Time
			cb.LastVisitedAt = &t
		}
		cb.Tags = []domain.CapsuleTag{}
		index[cb.ID] = len(bookmarks)
		bookmarks = append(bookmarks, cb)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	tagRows, err := q.QueryContext(ctx, s.rebind(`
		SELECT t.capsule_bookmark_id, t.tag_name, t.tag_color
		FROM time_capsule_tags t JOIN time_capsule_bookmarks b ON b.id = t.capsule_bookmark_id
		WHERE b.capsule_id = ? ORDER BY t.tag_name`), capsuleID)
	if err != nil {
		return nil, fmt.Errorf("capsule tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var t domain.CapsuleTag
		if err := tagRows.Scan(&t.CapsuleBookmarkID, &t.TagName, &t.TagColor); err != nil {
			return nil, fmt.Errorf("scan capsule tag: %w", err)
		}
		if i, ok := index[t.CapsuleBookmarkID]; ok {
			bookmarks[i].Tags = append(bookmarks[i].Tags, t)
		}
	}
	return bookmarks, tagRows.Err()
}

func (s *Store) UpdateCapsule(ctx context.Context, owner, id string, name, description *string) (domain.TimeCapsule, error) {
	sets := []string{"updated_at = ?"}
	args := []any{s.timestamp()}
	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *description)
	}
	args = append(args, id, owner)

	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE time_capsules SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`), args...)
	if err != nil {
		return domain.TimeCapsule{}, fmt.Errorf("update capsule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.TimeCapsule{}, apperror.NotFound("time capsule", id)
	}
	return s.GetCapsule(ctx, owner, id)
}

func (s *Store) DeleteCapsule(ctx context.Context, owner, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM time_capsules WHERE id = ? AND user_id = ?`), id, owner).Scan(&exists); err != nil {
			return fmt.Errorf("capsule lookup: %w", err)
		}
		if exists == 0 {
			return apperror.NotFound("time capsule", id)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`
			DELETE FROM time_capsule_tags WHERE capsule_bookmark_id IN (
				SELECT id FROM time_capsule_bookmarks WHERE capsule_id = ?)`), id); err != nil {
			return fmt.Errorf("delete capsule tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM time_capsule_bookmarks WHERE capsule_id = ?`), id); err != nil {
			return fmt.Errorf("delete capsule bookmarks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM time_capsules WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete capsule: %w", err)
		}
		return nil
	})
}

// RestoreCapsule re-inserts every snapshot bookmark as a new bookmark with
// a zero visit count, recreating tags by name. A snapshot bookmark that
// cannot be restored is rolled back on its own and reported in Errors;
// only the capsule and folder lookups abort the restore.
func (s *Store) RestoreCapsule(ctx context.Context, owner, id string, opts domain.RestoreOptions) (domain.RestoreResult, error) {
	result := domain.RestoreResult{Errors: []string{}}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM time_capsules WHERE id = ? AND user_id = ?`), id, owner).Scan(&exists); err != nil {
			return fmt.Errorf("capsule lookup: %w", err)
		}
		if exists == 0 {
			return apperror.NotFound("time capsule", id)
		}
		if opts.FolderID != nil && *opts.FolderID != "" {
			if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM folders WHERE id = ? AND user_id = ?`), *opts.FolderID, owner).Scan(&exists); err != nil {
				return fmt.Errorf("folder lookup: %w", err)
			}
			if exists == 0 {
				return apperror.NotFound("folder", *opts.FolderID)
			}
		}

		snapshot, err := s.capsuleBookmarks(ctx, tx, id)
		if err != nil {
			return err
		}

		existing := make(map[string]bool)
		if opts.SkipExisting {
			rows, err := tx.QueryContext(ctx, s.rebind(`SELECT url FROM bookmarks WHERE user_id = ?`), owner)
			if err != nil {
				return fmt.Errorf("existing urls: %w", err)
			}
			for rows.Next() {
				var u string
				if err := rows.Scan(&u); err != nil {
					rows.Close()
					return err
				}
				existing[u] = true
			}
			rows.Close()
		}

		for _, cb := range snapshot {
			if existing[cb.URL] {
				result.Skipped++
				continue
			}
			if err := s.savepoint(ctx, tx, "restore_bookmark", func() error {
				return s.restoreSnapshotBookmark(ctx, tx, owner, cb, opts.FolderID)
			}); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to restore %q: %v", cb.Title, err))
				continue
			}
			if opts.SkipExisting {
				existing[cb.URL] = true
			}
			result.Restored++
		}
		return nil
	})
	if err != nil {
		return domain.RestoreResult{}, err
	}
	return result, nil
}

func (s *Store) restoreSnapshotBookmark(ctx context.Context, tx *sql.Tx, owner string, cb domain.CapsuleBookmark, folderID *string) error {
	if !domain.IsValidURL(cb.URL) {
		return fmt.Errorf("invalid url %q", cb.URL)
	}
	b := domain.Bookmark{
		UserID:      owner,
		URL:         cb.URL,
		Title:       cb.Title,
		Description: cb.Description,
		FaviconURL:  cb.FaviconURL,
		FolderID:    folderID,
		IsFavorite:  cb.IsFavorite,
	}
	if err := s.insertBookmark(ctx, tx, &b); err != nil {
		return err
	}

	tagIDs := make([]string, 0, len(cb.Tags))
	for _, ct := range cb.Tags {
		t, err := s.createTag(ctx, tx, domain.Tag{UserID: owner, Name: ct.TagName, Color: ct.TagColor})
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, t.ID)
	}
	return s.linkTags(ctx, tx, b.ID, tagIDs)
}
