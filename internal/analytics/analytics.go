// Package analytics computes the usage summary shown on the dashboard.
// It is recomputed from the bookmark list on every request; nothing is stored.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

const (
	topDomains   = 10
	topVisited   = 5
	recentCount  = 5
	activeWindow = 30 * 24 * time.Hour

	uncategorized = "Uncategorized"
)

// Count is one bucket of a breakdown.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryHealth describes one folder.
type CategoryHealth struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Visits    int    `json:"visits"`
	Favorites int    `json:"favorites"`
}

type Summary struct {
	TotalBookmarks  int `json:"totalBookmarks"`
	TotalFavorites  int `json:"totalFavorites"`
	TotalArchived   int `json:"totalArchived"`
	TotalVisits     int `json:"totalVisits"`
	AverageVisits   int `json:"averageVisits"`
	ThisMonth       int `json:"thisMonth"`
	Unvisited       int `json:"unvisited"`
	FavoriteRate    int `json:"favoriteRate"`
	EngagementScore int `json:"engagementScore"`

	Categories     []Count           `json:"categories"`
	Domains        []Count           `json:"domains"`
	TopVisited     []domain.Bookmark `json:"topVisited"`
	Recent         []domain.Bookmark `json:"recent"`
	CategoryHealth []CategoryHealth  `json:"categoryHealth"`
}

// Summarize aggregates bookmarks as of now.
func Summarize(bookmarks []domain.Bookmark, now time.Time) Summary {
	s := Summary{
		TotalBookmarks: len(bookmarks),
		Categories:     []Count{},
		Domains:        []Count{},
		TopVisited:     []domain.Bookmark{},
		Recent:         []domain.Bookmark{},
		CategoryHealth: []CategoryHealth{},
	}
	if len(bookmarks) == 0 {
		return s
	}

	categories := make(map[string]*CategoryHealth)
	domains := make(map[string]int)
	active := 0
	year, month, _ := now.Date()

	for _, b := range bookmarks {
		s.TotalVisits += b.VisitCount
		if b.IsFavorite {
			s.TotalFavorites++
		}
		if b.IsArchived {
			s.TotalArchived++
		}
		if b.VisitCount == 0 {
			s.Unvisited++
		}
		if y, m, _ := b.CreatedAt.In(now.Location()).Date(); y == year && m == month {
			s.ThisMonth++
		}
		if b.LastVisitedAt != nil && now.Sub(*b.LastVisitedAt) <= activeWindow {
			active++
		}

		name := uncategorized
		if b.FolderID != nil && b.FolderName != "" {
			name = b.FolderName
		}
		c, ok := categories[name]
		if !ok {
			c = &CategoryHealth{Name: name}
			categories[name] = c
		}
		c.Count++
		c.Visits += b.VisitCount
		if b.IsFavorite {
			c.Favorites++
		}

		if host := domain.Hostname(b.URL); host != "" {
			domains[host]++
		}
	}

	total := float64(len(bookmarks))
	avgVisits := float64(s.TotalVisits) / total
	favoriteRate := float64(s.TotalFavorites) / total * 100
	activeRate := float64(active) / total * 100

	s.AverageVisits = int(math.Round(avgVisits))
	s.FavoriteRate = int(math.Round(favoriteRate))
	s.EngagementScore = int(math.Min(100, math.Round(avgVisits*10+favoriteRate*0.3+activeRate*0.3)))

	for _, c := range categories {
		s.Categories = append(s.Categories, Count{Name: c.Name, Count: c.Count})
		s.CategoryHealth = append(s.CategoryHealth, *c)
	}
	sortCounts(s.Categories)
	sort.Slice(s.CategoryHealth, func(i, j int) bool {
		if s.CategoryHealth[i].Count != s.CategoryHealth[j].Count {
			return s.CategoryHealth[i].Count > s.CategoryHealth[j].Count
		}
		return s.CategoryHealth[i].Name < s.CategoryHealth[j].Name
	})

	for host, n := range domains {
		s.Domains = append(s.Domains, Count{Name: host, Count: n})
	}
	sortCounts(s.Domains)
	if len(s.Domains) > topDomains {
		s.Domains = s.Domains[:topDomains]
	}

	byVisits := append([]domain.Bookmark(nil), bookmarks...)
	sort.SliceStable(byVisits, func(i, j int) bool { return byVisits[i].VisitCount > byVisits[j].VisitCount })
	for _, b := range byVisits {
		if b.VisitCount == 0 || len(s.TopVisited) == topVisited {
			break
		}
		s.TopVisited = append(s.TopVisited, b)
	}

	byDate := append([]domain.Bookmark(nil), bookmarks...)
	sort.SliceStable(byDate, func(i, j int) bool { return byDate[i].CreatedAt.After(byDate[j].CreatedAt) })
	if len(byDate) > recentCount {
		byDate = byDate[:recentCount]
	}
	s.Recent = byDate

	return s
}

func sortCounts(c []Count) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].Count != c[j].Count {
			return c[i].Count > c[j].Count
		}
		return c[i].Name < c[j].Name
	})
}
