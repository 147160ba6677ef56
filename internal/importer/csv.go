package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

// parseCSV reads a file with a header row. Columns are matched by name,
// case-insensitively, so both our export and hand-made sheets load.
func parseCSV(ctx context.Context, data []byte, c *collector) error {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("parse bookmarks csv: read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["url"]; !ok {
		return fmt.Errorf("parse bookmarks csv: header has no url column")
	}

	field := func(rec []string, names ...string) string {
		for _, name := range names {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
		}
		return ""
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			c.fail("malformed row: %v", err)
			continue
		}

		fav, _ := strconv.ParseBool(field(rec, "is_favorite", "favorite"))
		folder := field(rec, "folder", "folder_path")
		if folder == "Uncategorized" {
			folder = ""
		}
		c.add(domain.ImportedBookmark{
			Title:       field(rec, "title", "name"),
			URL:         field(rec, "url", "href"),
			Description: field(rec, "description"),
			Notes:       field(rec, "notes"),
			FaviconURL:  field(rec, "favicon_url", "favicon", "icon"),
			FolderPath:  folder,
			Tags:        splitTags(field(rec, "tags")),
			IsFavorite:  fav,
			CreatedAt:   parseTime(field(rec, "created_at", "date_added")),
		})
	}
}
