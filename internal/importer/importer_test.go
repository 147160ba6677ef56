package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want Format
	}{
		{"html by extension", "bookmarks.html", "", FormatHTML},
		{"yaml by extension", "bookmarks.yml", "", FormatYAML},
		{"csv by extension", "export.CSV", "", FormatCSV},
		{"html by content", "upload", "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n<DL><p>", FormatHTML},
		{"json array by content", "upload", `[{"url":"https://a.dev"}]`, FormatJSON},
		{"broken json", "upload", `{"roots":`, FormatUnknown},
		{"yaml by content", "upload", "---\n- Dev: []", FormatYAML},
		{"csv by content", "upload", "title,url\nGo,https://go.dev", FormatCSV},
		{"empty", "upload", "   ", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.file, []byte(tt.data)))
		})
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse(context.Background(), FormatUnknown, []byte("x"), Options{})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

const netscapeFile = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://loose.example.com" ADD_DATE="1700000000">Loose</A>
    <DT><H3 ADD_DATE="1700000000">Dev</H3>
    <DL><p>
        <DT><A HREF="https://go.dev" ADD_DATE="1700000100" ICON="data:image/png;base64,AAA" TAGS="go, lang">The Go Programming Language</A>
        <DD>Official site
        <DT><H3>Tools</H3>
        <DL><p>
            <DT><A HREF="https://github.com">GitHub</A>
        </DL><p>
        <DT><A HREF="https://pkg.go.dev">Packages</A>
    </DL><p>
    <DT><A HREF="javascript:void(0)">Bookmarklet</A>
    <DT><A HREF="https://go.dev">Go again</A>
</DL><p>
`

func TestParseNetscape(t *testing.T) {
	res, err := Parse(context.Background(), FormatHTML, []byte(netscapeFile), Options{SkipDuplicates: true})
	require.NoError(t, err)

	require.Len(t, res.Bookmarks, 4)
	byURL := map[string]int{}
	for i, b := range res.Bookmarks {
		byURL[b.URL] = i
	}

	loose := res.Bookmarks[byURL["https://loose.example.com"]]
	assert.Equal(t, "Imported", loose.FolderPath)
	require.NotNil(t, loose.CreatedAt)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *loose.CreatedAt)

	goDev := res.Bookmarks[byURL["https://go.dev"]]
	assert.Equal(t, "The Go Programming Language", goDev.Title)
	assert.Equal(t, "Dev", goDev.FolderPath)
	assert.Equal(t, []string{"go", "lang"}, goDev.Tags)
	assert.Equal(t, "Official site", goDev.Description)
	assert.Equal(t, "data:image/png;base64,AAA", goDev.FaviconURL)

	assert.Equal(t, "Dev/Tools", res.Bookmarks[byURL["https://github.com"]].FolderPath)
	assert.Equal(t, "Dev", res.Bookmarks[byURL["https://pkg.go.dev"]].FolderPath)

	assert.ElementsMatch(t, []string{"Imported", "Dev", "Dev/Tools"}, res.Folders)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, "Go again", res.Duplicates[0].Title)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "invalid url")
	assert.Equal(t, 6, res.TotalProcessed)
	assert.Equal(t, Summary{BookmarksFound: 4, FoldersFound: 3, DuplicatesFound: 1, ErrorsFound: 1}, res.Summary)
}

func TestParseNetscape_KeepDuplicates(t *testing.T) {
	res, err := Parse(context.Background(), FormatHTML, []byte(netscapeFile), Options{})
	require.NoError(t, err)
	assert.Len(t, res.Bookmarks, 5)
	assert.Len(t, res.Duplicates, 1)
}

func TestParseNetscape_NoList(t *testing.T) {
	_, err := Parse(context.Background(), FormatHTML, []byte("<html><body>nothing</body></html>"), Options{})
	assert.Error(t, err)
}

func TestParseNetscape_ExistingURLs(t *testing.T) {
	res, err := Parse(context.Background(), FormatHTML, []byte(netscapeFile), Options{
		SkipDuplicates: true,
		Existing:       map[string]bool{"https://github.com": true},
	})
	require.NoError(t, err)
	assert.Len(t, res.Bookmarks, 3)
	assert.Len(t, res.Duplicates, 2)
}

func TestParseChromium(t *testing.T) {
	data := `{
	  "roots": {
	    "bookmark_bar": {"type": "folder", "name": "Bookmarks bar", "children": [
	      {"type": "url", "name": "Go", "url": "https://go.dev", "date_added": "13300000000000000"},
	      {"type": "folder", "name": "News", "children": [
	        {"type": "url", "name": "", "url": "https://news.ycombinator.com"}
	      ]}
	    ]},
	    "other": {"type": "folder", "name": "Other", "children": [
	      {"type": "url", "name": "Chi", "url": "https://go-chi.io"}
	    ]}
	  }
	}`

	res, err := Parse(context.Background(), FormatJSON, []byte(data), Options{SkipDuplicates: true})
	require.NoError(t, err)
	require.Len(t, res.Bookmarks, 3)

	assert.Equal(t, "Bookmarks Bar", res.Bookmarks[0].FolderPath)
	require.NotNil(t, res.Bookmarks[0].CreatedAt)
	assert.Equal(t, time.Date(2022, 6, 18, 4, 26, 40, 0, time.UTC), *res.Bookmarks[0].CreatedAt)

	assert.Equal(t, "Untitled", res.Bookmarks[1].Title)
	assert.Equal(t, "Bookmarks Bar/News", res.Bookmarks[1].FolderPath)
	assert.Equal(t, "Other Bookmarks", res.Bookmarks[2].FolderPath)
}

func TestParseFlatJSON(t *testing.T) {
	data := `[
	  {"title": "Go", "url": "https://go.dev", "tags": ["go", "Go", " lang "], "folder": "Dev", "dateAdded": 1700000000000},
	  {"title": "Chi", "url": "https://go-chi.io", "tags": "router,http", "icon": "https://go-chi.io/favicon.ico"},
	  {"title": "", "url": "https://untitled.dev"},
	  42
	]`

	res, err := Parse(context.Background(), FormatJSON, []byte(data), Options{DefaultFolder: "Inbox"})
	require.NoError(t, err)
	require.Len(t, res.Bookmarks, 2)

	assert.Equal(t, []string{"go", "lang"}, res.Bookmarks[0].Tags)
	assert.Equal(t, "Dev", res.Bookmarks[0].FolderPath)
	require.NotNil(t, res.Bookmarks[0].CreatedAt)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), *res.Bookmarks[0].CreatedAt)

	assert.Equal(t, []string{"router", "http"}, res.Bookmarks[1].Tags)
	assert.Equal(t, "Inbox", res.Bookmarks[1].FolderPath)
	assert.Equal(t, "https://go-chi.io/favicon.ico", res.Bookmarks[1].FaviconURL)

	assert.Len(t, res.Errors, 2)
	assert.Equal(t, 4, res.TotalProcessed)
}

func TestParseJSON_ExportRoundTrip(t *testing.T) {
	data := `{"exportDate": "2025-01-01T00:00:00Z", "totalBookmarks": 1, "bookmarks": [
	  {"title": "Go", "url": "https://go.dev", "folder": "Dev", "tags": ["go"], "is_favorite": true, "created_at": "2024-05-01T10:00:00Z"}
	]}`

	res, err := Parse(context.Background(), FormatJSON, []byte(data), Options{})
	require.NoError(t, err)
	require.Len(t, res.Bookmarks, 1)
	b := res.Bookmarks[0]
	assert.True(t, b.IsFavorite)
	assert.Equal(t, "Dev", b.FolderPath)
	require.NotNil(t, b.CreatedAt)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), *b.CreatedAt)
}

func TestParseJSON_Unsupported(t *testing.T) {
	_, err := Parse(context.Background(), FormatJSON, []byte(`{"foo": 1}`), Options{})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Parse(context.Background(), FormatJSON, []byte(`[`), Options{})
	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	data := "\xef\xbb\xbfID,Title,URL,Description,Notes,Folder,Tags,Is_Favorite,Created_At\n" +
		"1,Go,https://go.dev,The language,,Dev/Lang,\"go, lang\",true,2024-05-01T10:00:00Z\n" +
		"2,Loose,https://loose.dev,,,Uncategorized,,false,\n" +
		"3,Broken,not a url,,,,,,\n"

	res, err := Parse(context.Background(), FormatCSV, []byte(data), Options{})
	require.NoError(t, err)
	require.Len(t, res.Bookmarks, 2)

	assert.Equal(t, "Dev/Lang", res.Bookmarks[0].FolderPath)
	assert.Equal(t, []string{"go", "lang"}, res.Bookmarks[0].Tags)
	assert.True(t, res.Bookmarks[0].IsFavorite)
	assert.Equal(t, "The language", res.Bookmarks[0].Description)

	assert.Equal(t, "Imported", res.Bookmarks[1].FolderPath)
	assert.Len(t, res.Errors, 1)
	assert.ElementsMatch(t, []string{"Dev/Lang", "Imported"}, res.Folders)
}

func TestParseCSV_MissingURLColumn(t *testing.T) {
	_, err := Parse(context.Background(), FormatCSV, []byte("title,link\nGo,https://go.dev\n"), Options{})
	assert.Error(t, err)
}

func TestParseHomepageBookmarks(t *testing.T) {
	data := `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Secret:
        - abbr: SE
          href: {{HOMEPAGE_VAR_SECRET_URL}}
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/
`
	res, err := Parse(context.Background(), FormatYAML, []byte(data), Options{})
	require.NoError(t, err)
	require.Len(t, res.Bookmarks, 2)

	byTitle := map[string]int{}
	for i, b := range res.Bookmarks {
		byTitle[b.Title] = i
	}
	gh := res.Bookmarks[byTitle["Github"]]
	assert.Equal(t, "https://github.com/", gh.URL)
	assert.Equal(t, "Developer", gh.FolderPath)
	assert.Equal(t, []string{"GH"}, gh.Tags)

	reddit := res.Bookmarks[byTitle["Reddit"]]
	assert.Equal(t, "Social", reddit.FolderPath)
	assert.Equal(t, "reddit.png", reddit.FaviconURL)

	// The stripped template variable leaves an empty href.
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "missing url")
}

func TestParseHomepageServices(t *testing.T) {
	data := `---
- Infrastructure:
    - AdGuard Home:
        icon: adguard-home.svg
        href: https://adguard.domain.ext
        description: Network-wide ads & trackers blocking DNS server
`
	res, err := Parse(context.Background(), FormatYAML, []byte(data), Options{})
	require.NoError(t, err)
	require.Len(t, res.Bookmarks, 1)
	assert.Equal(t, "AdGuard Home", res.Bookmarks[0].Title)
	assert.Equal(t, "Infrastructure", res.Bookmarks[0].FolderPath)
	assert.Equal(t, "Network-wide ads & trackers blocking DNS server", res.Bookmarks[0].Description)
}

func TestParseHomepage_Invalid(t *testing.T) {
	_, err := Parse(context.Background(), FormatYAML, []byte("key: [unclosed"), Options{})
	assert.Error(t, err)
}

func TestStripTemplateVariables(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"single template variable", []byte("url: {{HOMEPAGE_VAR_URL}}"), "url: \"\""},
		{"no template variables", []byte("plain text"), "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(stripTemplateVariables(tt.input)); got != tt.expected {
				t.Errorf("stripTemplateVariables() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParse_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, FormatHTML, []byte(netscapeFile), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
