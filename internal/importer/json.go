package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

// chromiumEpochOffset is the number of seconds from 1601-01-01, the zero of
// Chromium's microsecond date_added, to the Unix epoch.
const chromiumEpochOffset = 11644473600

var chromiumRootNames = map[string]string{
	"bookmark_bar": "Bookmarks Bar",
	"other":        "Other Bookmarks",
	"synced":       "Mobile Bookmarks",
}

type chromiumNode struct {
	Type      string         `json:"type"`
	Name      string         `json:"name"`
	URL       string         `json:"url"`
	DateAdded string         `json:"date_added"`
	Children  []chromiumNode `json:"children"`
}

// flatEntry is one element of the simple array shape. Tags may be an array
// or a comma separated string.
type flatEntry struct {
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
	Notes       string          `json:"notes"`
	Favicon     string          `json:"favicon"`
	Icon        string          `json:"icon"`
	FaviconURL  string          `json:"favicon_url"`
	Tags        json.RawMessage `json:"tags"`
	Folder      string          `json:"folder"`
	IsFavorite  bool            `json:"is_favorite"`
	DateAdded   json.RawMessage `json:"dateAdded"`
	CreatedAt   string          `json:"created_at"`
}

func parseJSON(ctx context.Context, data []byte, c *collector) error {
	var probe struct {
		Roots map[string]chromiumNode `json:"roots"`
		// Our own export wraps the array.
		Bookmarks []json.RawMessage `json:"bookmarks"`
	}

	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "["):
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parse bookmarks json: %w", err)
		}
		return parseFlat(ctx, entries, c)

	case strings.HasPrefix(trimmed, "{"):
		if err := json.Unmarshal(data, &probe); err != nil {
			return fmt.Errorf("parse bookmarks json: %w", err)
		}
		if len(probe.Roots) > 0 {
			return parseChromium(ctx, probe.Roots, c)
		}
		if probe.Bookmarks != nil {
			return parseFlat(ctx, probe.Bookmarks, c)
		}
	}
	return fmt.Errorf("parse bookmarks json: %w", ErrUnsupportedFormat)
}

func parseChromium(ctx context.Context, roots map[string]chromiumNode, c *collector) error {
	// Map iteration order is random; keep the browser's own order.
	for _, key := range []string{"bookmark_bar", "other", "synced"} {
		root, ok := roots[key]
		if !ok {
			continue
		}
		if err := walkChromium(ctx, root.Children, chromiumRootNames[key], c); err != nil {
			return err
		}
	}
	return nil
}

func walkChromium(ctx context.Context, nodes []chromiumNode, path string, c *collector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, n := range nodes {
		switch n.Type {
		case "folder":
			name := strings.TrimSpace(n.Name)
			if name == "" {
				name = "Unnamed Folder"
			}
			sub := joinPath(path, name)
			c.folder(sub)
			if err := walkChromium(ctx, n.Children, sub, c); err != nil {
				return err
			}
		case "url":
			title := n.Name
			if strings.TrimSpace(title) == "" {
				title = "Untitled"
			}
			c.add(domain.ImportedBookmark{
				Title:      title,
				URL:        n.URL,
				FolderPath: path,
				CreatedAt:  chromiumTime(n.DateAdded),
			})
		}
	}
	return nil
}

func chromiumTime(raw string) *time.Time {
	us, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || us <= 0 {
		return nil
	}
	t := time.Unix(us/1e6-chromiumEpochOffset, (us%1e6)*1e3).UTC()
	return &t
}

func parseFlat(ctx context.Context, entries []json.RawMessage, c *collector) error {
	for _, raw := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		var e flatEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			c.fail("not a bookmark object")
			continue
		}
		b := domain.ImportedBookmark{
			Title:       e.Title,
			URL:         e.URL,
			Description: e.Description,
			Notes:       e.Notes,
			FaviconURL:  firstNonEmpty(e.Favicon, e.Icon, e.FaviconURL),
			FolderPath:  e.Folder,
			Tags:        decodeTags(e.Tags),
			IsFavorite:  e.IsFavorite,
			CreatedAt:   flatTime(e.DateAdded, e.CreatedAt),
		}
		c.add(b)
	}
	return nil
}

func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var csv string
	if err := json.Unmarshal(raw, &csv); err == nil {
		return splitTags(csv)
	}
	// Our export writes tag objects.
	var objs []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &objs); err == nil {
		out := make([]string, 0, len(objs))
		for _, o := range objs {
			out = append(out, o.Name)
		}
		return out
	}
	return nil
}

// flatTime accepts dateAdded as epoch milliseconds or an RFC 3339 string,
// falling back to created_at.
func flatTime(dateAdded json.RawMessage, createdAt string) *time.Time {
	if len(dateAdded) > 0 {
		var ms int64
		if err := json.Unmarshal(dateAdded, &ms); err == nil && ms > 0 {
			t := time.UnixMilli(ms).UTC()
			return &t
		}
		var s string
		if err := json.Unmarshal(dateAdded, &s); err == nil {
			createdAt = firstNonEmpty(s, createdAt)
		}
	}
	return parseTime(createdAt)
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
