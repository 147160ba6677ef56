package sqldb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

// CommitImport writes parsed bookmarks for owner in one transaction.
// Folder paths are created on demand, reusing folders that already exist
// under the same parent. URLs the owner already has are skipped.
func (s *Store) CommitImport(ctx context.Context, owner string, items []domain.ImportedBookmark) (domain.ImportOutcome, []domain.Bookmark, error) {
	var (
		out     domain.ImportOutcome
		created []domain.Bookmark
	)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		folders, err := s.queryFolders(ctx, tx, `SELECT `+folderColumns+` FROM folders WHERE user_id = ?`, owner)
		if err != nil {
			return err
		}
		// parent id ("" for root) + "\x00" + name -> folder id
		byKey := make(map[string]string, len(folders))
		for _, f := range folders {
			parent := ""
			if f.ParentID != nil {
				parent = *f.ParentID
			}
			byKey[parent+"\x00"+f.Name] = f.ID
		}

		existing := make(map[string]bool)
		rows, err := tx.QueryContext(ctx, s.rebind(`SELECT url FROM bookmarks WHERE user_id = ?`), owner)
		if err != nil {
			return err
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

		resolve := func(path string) (*string, error) {
			parent := ""
			for _, name := range strings.Split(path, "/") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				key := parent + "\x00" + name
				if id, ok := byKey[key]; ok {
					parent = id
					continue
				}
				f := domain.Folder{UserID: owner, Name: name}
				if parent != "" {
					p := parent
					f.ParentID = &p
				}
				if err := s.insertFolder(ctx, tx, &f); err != nil {
					return nil, err
				}
				out.FoldersCreated++
				byKey[key] = f.ID
				parent = f.ID
			}
			if parent == "" {
				return nil, nil
			}
			return &parent, nil
		}

		tagIDs := make(map[string]string)
		for _, item := range items {
			if existing[item.URL] {
				out.Skipped++
				continue
			}

			folderID, err := resolve(item.FolderPath)
			if err != nil {
				return err
			}

			b := domain.Bookmark{
				UserID:      owner,
				URL:         item.URL,
				Title:       item.Title,
				Description: item.Description,
				Notes:       item.Notes,
				FaviconURL:  item.FaviconURL,
				FolderID:    folderID,
				IsFavorite:  item.IsFavorite,
			}
			if item.CreatedAt != nil {
				b.CreatedAt = *item.CreatedAt
			}
			if err := s.insertBookmark(ctx, tx, &b); err != nil {
				return err
			}

			ids := make([]string, 0, len(item.Tags))
			for _, name := range item.Tags {
				name = normalizeTagName(name)
				if name == "" {
					continue
				}
				id, ok := tagIDs[name]
				if !ok {
					t, err := s.createTag(ctx, tx, domain.Tag{UserID: owner, Name: name})
					if err != nil {
						return err
					}
					id = t.ID
					tagIDs[name] = id
				}
				ids = append(ids, id)
			}
			if err := s.linkTags(ctx, tx, b.ID, ids); err != nil {
				return err
			}
			out.TagsLinked += len(ids)

			existing[item.URL] = true
			created = append(created, b)
			out.Created++
		}
		return nil
	})
	if err != nil {
		return domain.ImportOutcome{}, nil, err
	}
	return out, created, nil
}
