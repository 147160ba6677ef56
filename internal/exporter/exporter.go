// Package exporter writes bookmarks as CSV, JSON or a Netscape bookmark file.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Uncategorized names the folder column of unfiled bookmarks.
const Uncategorized = "Uncategorized"

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts csv, json and html; empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatCSV, FormatJSON, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// Options narrows what is written. Zero values mean no filter.
type Options struct {
	FolderIDs []string
	From      time.Time
	To        time.Time
}

func (o Options) keep(b domain.Bookmark) bool {
	if len(o.FolderIDs) > 0 {
		if b.FolderID == nil {
			return false
		}
		found := false
		for _, id := range o.FolderIDs {
			if id == *b.FolderID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !o.From.IsZero() && b.CreatedAt.Before(o.From) {
		return false
	}
	if !o.To.IsZero() && b.CreatedAt.After(o.To) {
		return false
	}
	return true
}

// Filter applies opts.
func Filter(bookmarks []domain.Bookmark, opts Options) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if opts.keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// Filename is bookmarks-YYYY-MM-DD.<ext>.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("bookmarks-%s.%s", now.Format("2006-01-02"), f)
}

func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Write encodes bookmarks in format f. now stamps the JSON export date.
func Write(w io.Writer, f Format, bookmarks []domain.Bookmark, now time.Time) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, bookmarks)
	case FormatJSON:
		return writeJSON(w, bookmarks, now)
	case FormatHTML:
		return writeHTML(w, bookmarks, now)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

var csvHeader = []string{
	"id", "title", "url", "description", "notes", "folder", "tags",
	"is_favorite", "is_archived", "created_at", "updated_at",
	"visit_count", "last_visited", "favicon_url",
}

func writeCSV(w io.Writer, bookmarks []domain.Bookmark) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bookmarks {
		lastVisited := ""
		if b.LastVisitedAt != nil {
			lastVisited = b.LastVisitedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			b.ID,
			b.Title,
			b.URL,
			b.Description,
			b.Notes,
			folderName(b),
			strings.Join(tagNames(b), ", "),
			strconv.FormatBool(b.IsFavorite),
			strconv.FormatBool(b.IsArchived),
			b.CreatedAt.UTC().Format(time.RFC3339),
			b.UpdatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(b.VisitCount),
			lastVisited,
			b.FaviconURL,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonBookmark is the exported shape; it is also what the importer reads back.
type jsonBookmark struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Notes       string     `json:"notes"`
	Folder      string     `json:"folder"`
	Tags        []string   `json:"tags"`
	IsFavorite  bool       `json:"is_favorite"`
	IsArchived  bool       `json:"is_archived"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	VisitCount  int        `json:"visit_count"`
	LastVisited *time.Time `json:"last_visited"`
	FaviconURL  string     `json:"favicon_url"`
}

type jsonExport struct {
	ExportDate     time.Time      `json:"exportDate"`
	TotalBookmarks int            `json:"totalBookmarks"`
	Bookmarks      []jsonBookmark `json:"bookmarks"`
}

func writeJSON(w io.Writer, bookmarks []domain.Bookmark, now time.Time) error {
	out := jsonExport{
		ExportDate:     now.UTC(),
		TotalBookmarks: len(bookmarks),
		Bookmarks:      make([]jsonBookmark, len(bookmarks)),
	}
	for i, b := range bookmarks {
		folder := ""
		if b.FolderID != nil {
			folder = b.FolderName
		}
		out.Bookmarks[i] = jsonBookmark{
			ID:          b.ID,
			Title:       b.Title,
			URL:         b.URL,
			Description: b.Description,
			Notes:       b.Notes,
			Folder:      folder,
			Tags:        tagNames(b),
			IsFavorite:  b.IsFavorite,
			IsArchived:  b.IsArchived,
			CreatedAt:   b.CreatedAt.UTC(),
			UpdatedAt:   b.UpdatedAt.UTC(),
			VisitCount:  b.VisitCount,
			LastVisited: b.LastVisitedAt,
			FaviconURL:  b.FaviconURL,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeHTML writes the Netscape format, one <H3> per folder name. Unfiled
// bookmarks come first, outside any folder.
func writeHTML(w io.Writer, bookmarks []domain.Bookmark, now time.Time) error {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	sb.WriteString("<!-- This is an automatically generated file. -->\n")
	sb.WriteString(`<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">` + "\n")
	sb.WriteString("<TITLE>Bookmarks</TITLE>\n<H1>Bookmarks</H1>\n<DL><p>\n")

	byFolder := make(map[string][]domain.Bookmark)
	for _, b := range bookmarks {
		name := ""
		if b.FolderID != nil {
			name = b.FolderName
		}
		byFolder[name] = append(byFolder[name], b)
	}

	for _, b := range byFolder[""] {
		writeAnchor(&sb, b, "    ")
	}
	names := make([]string, 0, len(byFolder))
	for name := range byFolder {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "    <DT><H3 ADD_DATE=\"%d\">%s</H3>\n    <DL><p>\n", now.Unix(), html.EscapeString(name))
		for _, b := range byFolder[name] {
			writeAnchor(&sb, b, "        ")
		}
		sb.WriteString("    </DL><p>\n")
	}
	sb.WriteString("</DL><p>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeAnchor(sb *strings.Builder, b domain.Bookmark, indent string) {
	fmt.Fprintf(sb, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\"", indent, html.EscapeString(b.URL), b.CreatedAt.Unix())
	if b.FaviconURL != "" {
		fmt.Fprintf(sb, " ICON=\"%s\"", html.EscapeString(b.FaviconURL))
	}
	if tags := tagNames(b); len(tags) > 0 {
		fmt.Fprintf(sb, " TAGS=\"%s\"", html.EscapeString(strings.Join(tags, ",")))
	}
	fmt.Fprintf(sb, ">%s</A>\n", html.EscapeString(b.Title))
	if b.Description != "" {
		fmt.Fprintf(sb, "%s<DD>%s\n", indent, html.EscapeString(b.Description))
	}
}

func folderName(b domain.Bookmark) string {
	if b.FolderID == nil || b.FolderName == "" {
		return Uncategorized
	}
	return b.FolderName
}

func tagNames(b domain.Bookmark) []string {
	names := make([]string, len(b.Tags))
	for i, t := range b.Tags {
		names[i] = t.Name
	}
	return names
}
