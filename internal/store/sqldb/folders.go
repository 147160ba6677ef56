package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

const folderColumns = `id, user_id, name, description, color, parent_id, created_at, updated_at`

func scanFolder(sc scanner) (domain.Folder, error) {
	var (
		f      domain.Folder
		parent sql.NullString
	)
	if err := sc.Scan(&f.ID, &f.UserID, &f.Name, &f.Description, &f.Color, &parent, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return domain.Folder{}, err
	}
	if parent.Valid {
		f.ParentID = &parent.String
	}
	return f, nil
}

func (s *Store) queryFolders(ctx context.Context, q querier, query string, args ...any) ([]domain.Folder, error) {
	rows, err := q.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Folder, 0, 8)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) ListFolders(ctx context.Context, owner string) ([]domain.Folder, error) {
	return s.queryFolders(ctx, s.db, `SELECT `+folderColumns+` FROM folders WHERE user_id = ? ORDER BY name`, owner)
}

// ListChildFolders lists root folders when parentID is nil.
func (s *Store) ListChildFolders(ctx context.Context, owner string, parentID *string) ([]domain.Folder, error) {
	if parentID == nil || *parentID == "" {
		return s.queryFolders(ctx, s.db, `SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND parent_id IS NULL ORDER BY name`, owner)
	}
	return s.queryFolders(ctx, s.db, `SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND parent_id = ? ORDER BY name`, owner, *parentID)
}

func (s *Store) SearchFolders(ctx context.Context, owner, q string) ([]domain.Folder, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
	return s.queryFolders(ctx, s.db, `SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND LOWER(name) LIKE ? ESCAPE '\' ORDER BY name`, owner, pattern)
}

func (s *Store) GetFolder(ctx context.Context, owner, id string) (domain.Folder, error) {
	f, err := scanFolder(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+folderColumns+` FROM folders WHERE id = ? AND user_id = ?`), id, owner))
	if err != nil {
		return domain.Folder{}, notFound(err, "folder", id)
	}
	return f, nil
}

func (s *Store) CreateFolder(ctx context.Context, f domain.Folder) (domain.Folder, error) {
	if err := s.insertFolder(ctx, s.db, &f); err != nil {
		return domain.Folder{}, err
	}
	return f, nil
}

func (s *Store) insertFolder(ctx context.Context, q querier, f *domain.Folder) error {
	now := s.timestamp()
	if f.ID == "" {
		f.ID = newID()
	}
	f.CreatedAt, f.UpdatedAt = now, now

	_, err := q.ExecContext(ctx, s.rebind(`
		INSERT INTO folders (id, user_id, name, description, color, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		f.ID, f.UserID, f.Name, f.Description, f.Color, nullableID(f.ParentID), f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

func (s *Store) UpdateFolder(ctx context.Context, owner, id string, p domain.FolderPatch) (domain.Folder, error) {
	sets := []string{"updated_at = ?"}
	args := []any{s.timestamp()}
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *p.Color)
	}
	args = append(args, id, owner)

	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE folders SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`), args...)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("update folder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Folder{}, apperror.NotFound("folder", id)
	}
	return s.GetFolder(ctx, owner, id)
}

// DeleteFolder refuses to delete a folder that still holds subfolders or bookmarks.
func (s *Store) DeleteFolder(ctx context.Context, owner, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists, children, bookmarks int
		if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM folders WHERE id = ? AND user_id = ?`), id, owner).Scan(&exists); err != nil {
			return fmt.Errorf("folder lookup: %w", err)
		}
		if exists == 0 {
			return apperror.NotFound("folder", id)
		}
		if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM folders WHERE parent_id = ?`), id).Scan(&children); err != nil {
			return fmt.Errorf("count subfolders: %w", err)
		}
		if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM bookmarks WHERE folder_id = ?`), id).Scan(&bookmarks); err != nil {
			return fmt.Errorf("count folder bookmarks: %w", err)
		}
		if children > 0 || bookmarks > 0 {
			return apperror.Conflict(fmt.Sprintf("folder is not empty (%d subfolders, %d bookmarks)", children, bookmarks))
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM folders WHERE id = ? AND user_id = ?`), id, owner); err != nil {
			return fmt.Errorf("delete folder: %w", err)
		}
		return nil
	})
}

// MoveFolder reparents id under newParentID (nil for root). Moving a folder
// into itself or one of its descendants is rejected.
func (s *Store) MoveFolder(ctx context.Context, owner, id string, newParentID *string) (domain.Folder, error) {
	folders, err := s.ListFolders(ctx, owner)
	if err != nil {
		return domain.Folder{}, err
	}
	byID := indexFolders(folders)
	if _, ok := byID[id]; !ok {
		return domain.Folder{}, apperror.NotFound("folder", id)
	}

	if newParentID != nil && *newParentID != "" {
		if _, ok := byID[*newParentID]; !ok {
			return domain.Folder{}, apperror.NotFound("parent folder", *newParentID)
		}
		for cur := *newParentID; cur != ""; {
			if cur == id {
				return domain.Folder{}, apperror.ValidationFailed("parent_id", "circular reference: a folder cannot be moved into itself or its descendants")
			}
			parent := byID[cur].ParentID
			if parent == nil {
				break
			}
			cur = *parent
		}
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`UPDATE folders SET parent_id = ?, updated_at = ? WHERE id = ? AND user_id = ?`),
		nullableID(newParentID), s.timestamp(), id, owner)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("move folder: %w", err)
	}
	return s.GetFolder(ctx, owner, id)
}

// FolderPath returns the ancestors of id followed by id itself, root first.
func (s *Store) FolderPath(ctx context.Context, owner, id string) ([]domain.Folder, error) {
	folders, err := s.ListFolders(ctx, owner)
	if err != nil {
		return nil, err
	}
	byID := indexFolders(folders)
	if _, ok := byID[id]; !ok {
		return nil, apperror.NotFound("folder", id)
	}

	var path []domain.Folder
	seen := make(map[string]bool)
	for cur := id; cur != "" && !seen[cur]; {
		f, ok := byID[cur]
		if !ok {
			break
		}
		seen[cur] = true
		path = append(path, f)
		if f.ParentID == nil {
			break
		}
		cur = *f.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

func indexFolders(folders []domain.Folder) map[string]domain.Folder {
	m := make(map[string]domain.Folder, len(folders))
	for _, f := range folders {
		m[f.ID] = f
	}
	return m
}
