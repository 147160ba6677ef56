package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

// parseNetscape walks the Netscape bookmark format exported by every major
// browser. The format leaves <DT> and <p> unclosed, so it is tokenized
// rather than parsed into a tree: an <H3> names the folder opened by the
// next <DL>, and </DL> closes it.
func parseNetscape(ctx context.Context, data []byte, c *collector) error {
	z := html.NewTokenizer(bytes.NewReader(data))

	stack := []string{""}
	pending := ""
	sawList := false
	last, desc := -1, -1 // index of the last kept bookmark, and of the one taking a <DD>

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("parse bookmarks html: %w", err)
			}
			if !sawList {
				return fmt.Errorf("parse bookmarks html: no bookmark list found")
			}
			return nil
		}
		if tt == html.TextToken {
			if desc >= 0 {
				c.res.Bookmarks[desc].Description += string(z.Text())
			}
			continue
		}
		if tt != html.StartTagToken && tt != html.EndTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		tok := z.Token()
		if desc >= 0 {
			c.res.Bookmarks[desc].Description = strings.TrimSpace(c.res.Bookmarks[desc].Description)
			desc = -1
		}

		if tt == html.EndTagToken {
			if tok.DataAtom == atom.Dl && len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		switch tok.DataAtom {
		case atom.Dl:
			sawList = true
			path := stack[len(stack)-1]
			if pending != "" {
				path = joinPath(path, pending)
				c.folder(path)
				pending = ""
			}
			stack = append(stack, path)
			last = -1

		case atom.H3:
			pending = textUntil(z, atom.H3)
			if pending == "" {
				pending = "Unnamed Folder"
			}
			last = -1

		case atom.A:
			b := domain.ImportedBookmark{FolderPath: stack[len(stack)-1]}
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "href":
					b.URL = a.Val
				case "add_date":
					if secs, err := strconv.ParseInt(a.Val, 10, 64); err == nil && secs > 0 {
						t := time.Unix(secs, 0).UTC()
						b.CreatedAt = &t
					}
				case "icon":
					b.FaviconURL = a.Val
				case "tags":
					b.Tags = splitTags(a.Val)
				}
			}
			b.Title = textUntil(z, atom.A)

			before := len(c.res.Bookmarks)
			c.add(b)
			last = -1
			if len(c.res.Bookmarks) > before {
				last = before
			}

		case atom.Dd:
			// A description belongs to the anchor right before it.
			desc, last = last, -1
		}
	}
}

// textUntil collects text tokens up to the closing tag a.
func textUntil(z *html.Tokenizer, a atom.Atom) string {
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(z.Text())
		case html.EndTagToken:
			if z.Token().DataAtom == a {
				return strings.TrimSpace(sb.String())
			}
		}
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
