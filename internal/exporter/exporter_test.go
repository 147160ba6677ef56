package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
	"github.com/MrSnakeDoc/bookhub/internal/importer"
)

var exportNow = time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)

func sample() []domain.Bookmark {
	dev := "folder-dev"
	visited := time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)
	return []domain.Bookmark{
		{
			ID: "b1", Title: "Go", URL: "https://go.dev", Description: "The language",
			FolderID: &dev, FolderName: "Dev", IsFavorite: true, VisitCount: 4,
			LastVisitedAt: &visited, FaviconURL: "https://go.dev/favicon.ico",
			Tags:      []domain.Tag{{Name: "go"}, {Name: "lang"}},
			CreatedAt: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "b2", Title: "Quotes \"&\" <tags>", URL: "https://example.com/?a=1&b=2",
			CreatedAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"html", FormatHTML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "bookmarks-2025-02-03.csv", Filename(FormatCSV, exportNow))
}

func TestFilter(t *testing.T) {
	all := sample()
	assert.Len(t, Filter(all, Options{}), 2)
	assert.Len(t, Filter(all, Options{FolderIDs: []string{"folder-dev"}}), 1)
	assert.Len(t, Filter(all, Options{From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}), 1)
	assert.Len(t, Filter(all, Options{To: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}), 1)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sample(), exportNow))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	assert.Equal(t, []string{
		"b1", "Go", "https://go.dev", "The language", "", "Dev", "go, lang",
		"true", "false", "2025-01-10T00:00:00Z", "2025-01-11T00:00:00Z",
		"4", "2025-01-20T08:00:00Z", "https://go.dev/favicon.ico",
	}, rows[1])
	assert.Equal(t, Uncategorized, rows[2][5])
	assert.Equal(t, "", rows[2][12])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sample(), exportNow))

	var got struct {
		ExportDate     time.Time        `json:"exportDate"`
		TotalBookmarks int              `json:"totalBookmarks"`
		Bookmarks      []map[string]any `json:"bookmarks"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, exportNow, got.ExportDate)
	assert.Equal(t, 2, got.TotalBookmarks)
	assert.Equal(t, "Dev", got.Bookmarks[0]["folder"])
	assert.Equal(t, []any{"go", "lang"}, got.Bookmarks[0]["tags"])
}

func TestWrite_Unsupported(t *testing.T) {
	assert.ErrorIs(t, Write(&bytes.Buffer{}, Format("xml"), nil, exportNow), ErrUnsupportedFormat)
}

// Every export format must load back through the importer.
func TestExportsReimport(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatJSON, FormatHTML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, f, sample(), exportNow))

			res, err := importer.Parse(context.Background(), importer.Format(f), buf.Bytes(), importer.Options{})
			require.NoError(t, err)
			require.Len(t, res.Bookmarks, 2, "errors: %v", res.Errors)

			byURL := map[string]domain.ImportedBookmark{}
			for _, b := range res.Bookmarks {
				byURL[b.URL] = b
			}
			goDev := byURL["https://go.dev"]
			assert.Equal(t, "Go", goDev.Title)
			assert.Equal(t, "Dev", goDev.FolderPath)
			assert.Equal(t, []string{"go", "lang"}, goDev.Tags)
			require.NotNil(t, goDev.CreatedAt)
			assert.True(t, goDev.CreatedAt.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))

			quoted := byURL["https://example.com/?a=1&b=2"]
			assert.Equal(t, "Quotes \"&\" <tags>", quoted.Title)
			assert.Equal(t, importer.DefaultFolder, quoted.FolderPath)
		})
	}
}
