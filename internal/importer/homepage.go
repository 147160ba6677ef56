package importer

import (
	"context"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

// homepageEntry is a single entry of a Homepage bookmarks.yaml.
type homepageEntry struct {
	Icon        string `yaml:"icon"`
	Abbr        string `yaml:"abbr"`
	Href        string `yaml:"href"`
	Description string `yaml:"description"`
}

// homepageBookmarks is the bookmarks.yaml root:
// - Group: [ - Name: [ {icon, abbr, href} ] ]
// Each bookmark name maps to a list holding a single entry.
type homepageBookmarks []map[string][]map[string][]homepageEntry

// homepageServices is the services.yaml root, where each service name maps
// straight to its properties.
type homepageServices []map[string][]map[string]homepageEntry

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// stripTemplateVariables removes Homepage template variables from YAML.
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}

// parseHomepage loads a Homepage bookmarks.yaml, or a services.yaml as a
// fallback. Groups become folders and entries become bookmarks titled by
// their name.
func parseHomepage(ctx context.Context, data []byte, c *collector) error {
	data = stripTemplateVariables(data)

	var bookmarks homepageBookmarks
	bmErr := yaml.Unmarshal(data, &bookmarks)
	if bmErr == nil && len(bookmarks) > 0 {
		for _, group := range bookmarks {
			for groupName, entries := range group {
				c.folder(groupName)
				for _, named := range entries {
					for name, list := range named {
						if err := ctx.Err(); err != nil {
							return err
						}
						if len(list) == 0 {
							continue
						}
						c.add(homepageBookmark(groupName, name, list[0]))
					}
				}
			}
		}
		return nil
	}

	var services homepageServices
	if err := yaml.Unmarshal(data, &services); err != nil {
		if bmErr != nil {
			return fmt.Errorf("parse homepage yaml: %w", bmErr)
		}
		return fmt.Errorf("parse homepage yaml: %w", err)
	}
	for _, group := range services {
		for groupName, entries := range group {
			c.folder(groupName)
			for _, named := range entries {
				for name, entry := range named {
					if err := ctx.Err(); err != nil {
						return err
					}
					c.add(homepageBookmark(groupName, name, entry))
				}
			}
		}
	}
	return nil
}

func homepageBookmark(group, name string, e homepageEntry) domain.ImportedBookmark {
	title := name
	if title == "" {
		title = e.Abbr
	}
	var tags []string
	if e.Abbr != "" {
		tags = []string{e.Abbr}
	}
	return domain.ImportedBookmark{
		Title:       title,
		URL:         e.Href,
		Description: e.Description,
		FaviconURL:  e.Icon,
		FolderPath:  group,
		Tags:        tags,
	}
}
