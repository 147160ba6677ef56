// Package importer turns browser and dashboard bookmark exports into
// domain.ImportedBookmark values. It never touches storage.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

type Format string

const (
	FormatHTML    Format = "html"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatYAML    Format = "yaml"
	FormatUnknown Format = "unknown"
)

// DefaultFolder receives entries that sit outside any folder.
const DefaultFolder = "Imported"

var ErrUnsupportedFormat = errors.New("unsupported import format")

type Options struct {
	SkipDuplicates bool
	DefaultFolder  string
	// Existing holds URLs the owner already has.
	Existing map[string]bool
}

type Summary struct {
	BookmarksFound  int `json:"bookmarksFound"`
	FoldersFound    int `json:"foldersFound"`
	DuplicatesFound int `json:"duplicatesFound"`
	ErrorsFound     int `json:"errorsFound"`
}

type Result struct {
	Format         Format                    `json:"format"`
	Bookmarks      []domain.ImportedBookmark `json:"bookmarks"`
	Folders        []string                  `json:"folders"`
	Duplicates     []domain.ImportedBookmark `json:"duplicates"`
	Errors         []string                  `json:"errors"`
	TotalProcessed int                       `json:"totalProcessed"`
	Summary        Summary                   `json:"summary"`
}

// Detect guesses the format from the file name, then from the content.
func Detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return FormatHTML
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return FormatUnknown
	case trimmed[0] == '<' && bytes.Contains(bytes.ToLower(trimmed), []byte("<dl")):
		return FormatHTML
	case (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("---")) || bytes.HasPrefix(trimmed, []byte("- ")):
		return FormatYAML
	}
	if firstLine, _, _ := bytes.Cut(trimmed, []byte("\n")); bytes.Contains(bytes.ToLower(firstLine), []byte("url")) && bytes.Contains(firstLine, []byte(",")) {
		return FormatCSV
	}
	return FormatUnknown
}

// Parse reads data in the given format. A file that cannot be read at all is
// an error; individual bad entries are reported in Result.Errors.
func Parse(ctx context.Context, format Format, data []byte, opts Options) (Result, error) {
	c := newCollector(format, opts)

	var err error
	switch format {
	case FormatHTML:
		err = parseNetscape(ctx, data, c)
	case FormatJSON:
		err = parseJSON(ctx, data, c)
	case FormatCSV:
		err = parseCSV(ctx, data, c)
	case FormatYAML:
		err = parseHomepage(ctx, data, c)
	default:
		return Result{}, ErrUnsupportedFormat
	}
	if err != nil {
		return Result{}, err
	}
	return c.result(), nil
}

// collector applies validation and duplicate rules shared by every parser.
type collector struct {
	opts    Options
	res     Result
	seen    map[string]bool
	folders map[string]bool
}

func newCollector(format Format, opts Options) *collector {
	if opts.DefaultFolder == "" {
		opts.DefaultFolder = DefaultFolder
	}
	return &collector{
		opts: opts,
		res: Result{
			Format:     format,
			Bookmarks:  []domain.ImportedBookmark{},
			Folders:    []string{},
			Duplicates: []domain.ImportedBookmark{},
			Errors:     []string{},
		},
		seen:    make(map[string]bool),
		folders: make(map[string]bool),
	}
}

func (c *collector) folder(path string) {
	path = cleanPath(path)
	if path == "" || c.folders[path] {
		return
	}
	c.folders[path] = true
	c.res.Folders = append(c.res.Folders, path)
}

func (c *collector) fail(format string, args ...any) {
	c.res.TotalProcessed++
	c.res.Errors = append(c.res.Errors, fmt.Sprintf("entry %d: %s", c.res.TotalProcessed, fmt.Sprintf(format, args...)))
}

func (c *collector) add(b domain.ImportedBookmark) {
	c.res.TotalProcessed++
	idx := c.res.TotalProcessed

	b.Title = strings.TrimSpace(b.Title)
	b.URL = strings.TrimSpace(b.URL)
	if b.URL == "" {
		c.res.Errors = append(c.res.Errors, fmt.Sprintf("entry %d: missing url", idx))
		return
	}
	if !domain.IsValidURL(b.URL) {
		c.res.Errors = append(c.res.Errors, fmt.Sprintf("entry %d: invalid url %q", idx, b.URL))
		return
	}
	if b.Title == "" {
		c.res.Errors = append(c.res.Errors, fmt.Sprintf("entry %d: missing title for %s", idx, b.URL))
		return
	}

	b.FolderPath = cleanPath(b.FolderPath)
	if b.FolderPath == "" {
		b.FolderPath = c.opts.DefaultFolder
	}
	c.folder(b.FolderPath)
	b.Tags = cleanTags(b.Tags)

	if c.seen[b.URL] || c.opts.Existing[b.URL] {
		c.res.Duplicates = append(c.res.Duplicates, b)
		if c.opts.SkipDuplicates {
			return
		}
	}
	c.seen[b.URL] = true
	c.res.Bookmarks = append(c.res.Bookmarks, b)
}

func (c *collector) result() Result {
	c.res.Summary = Summary{
		BookmarksFound:  len(c.res.Bookmarks),
		FoldersFound:    len(c.res.Folders),
		DuplicatesFound: len(c.res.Duplicates),
		ErrorsFound:     len(c.res.Errors),
	}
	return c.res
}

func cleanPath(path string) string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
