// Package dna derives the heuristic "DNA profile" of a user from their
// activity log, bookmarks and folders. Everything here is pure.
package dna

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

// AnalysisVersion is stamped on every stored profile.
const AnalysisVersion = "1.0"

// EventWindowDays is how far back Analyze looks in the activity log.
const EventWindowDays = 30

// Analysis is the full result of one run.
type Analysis struct {
	Traits           domain.Traits
	PeakHours        []int
	InteractionStyle domain.InteractionStyle
	LearningStyle    domain.LearningStyle
	ContentAffinity  domain.ContentAffinity
	Confidence       float64
}

// Analyze computes traits, habits and affinities.
func Analyze(events []domain.DNAEvent, bookmarks []domain.Bookmark, folders []domain.Folder) Analysis {
	a := Analysis{
		Traits:           traits(events, bookmarks, folders),
		PeakHours:        peakHours(events),
		InteractionStyle: interactionStyle(events, bookmarks, folders),
		ContentAffinity:  contentAffinity(bookmarks),
	}
	a.LearningStyle = learningStyle(a.Traits, a.InteractionStyle)
	a.Confidence = confidence(a.Traits)
	return a
}

// Profile converts the analysis into a storable profile for owner.
func (a Analysis) Profile(owner string) domain.DNAProfile {
	return domain.DNAProfile{
		UserID:           owner,
		Traits:           a.Traits,
		PeakHours:        a.PeakHours,
		InteractionStyle: a.InteractionStyle,
		LearningStyle:    a.LearningStyle,
		ContentAffinity:  a.ContentAffinity,
		ConfidenceScore:  a.Confidence,
		AnalysisVersion:  AnalysisVersion,
	}
}

func traits(events []domain.DNAEvent, bookmarks []domain.Bookmark, folders []domain.Folder) domain.Traits {
	var curiosity, focus, exploration float64

	if len(bookmarks) > 0 {
		domains := make(map[string]struct{}, len(bookmarks))
		for _, b := range bookmarks {
			domains[domain.Hostname(b.URL)] = struct{}{}
		}
		curiosity = float64(len(domains)) / float64(len(bookmarks)) * 200
	}

	var visited, added, tagging int
	for _, e := range events {
		switch e.EventType {
		case domain.EventBookmarkVisited:
			visited++
		case domain.EventBookmarkAdded:
			added++
		}
		if strings.Contains(e.EventType, "tag") {
			tagging++
		}
	}
	if len(events) > 0 {
		focus = float64(visited) / float64(len(events)) * 150
	}
	exploration = float64(added) / EventWindowDays * 100
	organization := float64(len(folders)*10 + tagging*5)

	return domain.Traits{
		Curiosity:    clampScore(curiosity),
		Focus:        clampScore(focus),
		Organization: clampScore(organization),
		Exploration:  clampScore(exploration),
	}
}

func clampScore(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

// peakHours returns up to three UTC hours with the most events, busiest
// first. Ties go to the earlier hour.
func peakHours(events []domain.DNAEvent) []int {
	counts := make(map[int]int)
	for _, e := range events {
		counts[e.CreatedAt.UTC().Hour()]++
	}

	hours := make([]int, 0, len(counts))
	for h := range counts {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if counts[hours[i]] != counts[hours[j]] {
			return counts[hours[i]] > counts[hours[j]]
		}
		return hours[i] < hours[j]
	})
	if len(hours) > 3 {
		hours = hours[:3]
	}
	return hours
}

func interactionStyle(events []domain.DNAEvent, bookmarks []domain.Bookmark, folders []domain.Folder) domain.InteractionStyle {
	var style domain.InteractionStyle

	switch {
	case len(folders) == 0:
		style.OrganizationLevel = "minimal"
	case float64(len(bookmarks))/float64(len(folders)) > 10:
		style.OrganizationLevel = "moderate"
	default:
		style.OrganizationLevel = "extensive"
	}

	tagging := 0
	for _, e := range events {
		if e.EventType == domain.EventTagAdded || e.EventType == domain.EventTagRemoved {
			tagging++
		}
	}
	switch {
	case tagging == 0:
		style.TaggingBehavior = "none"
	case tagging < 10:
		style.TaggingBehavior = "basic"
	default:
		style.TaggingBehavior = "detailed"
	}

	nested := 0
	for _, f := range folders {
		if f.ParentID != nil {
			nested++
		}
	}
	switch {
	case len(folders) == 0 || nested == 0:
		style.FolderUsage = "flat"
	case float64(nested)/float64(len(folders)) > 0.3:
		style.FolderUsage = "hierarchical"
	default:
		style.FolderUsage = "mixed"
	}
	return style
}

func learningStyle(t domain.Traits, style domain.InteractionStyle) domain.LearningStyle {
	ls := domain.LearningStyle{
		Preference:   "structured",
		Pace:         "broad",
		Organization: style.OrganizationLevel,
	}
	if t.Exploration > 70 {
		ls.Preference = "exploratory"
	}
	if t.Focus > 70 {
		ls.Pace = "deep"
	}
	return ls
}

// contentAffinity buckets bookmarks by inferred category. The distribution
// is in percent; topCategories keeps the five largest.
func contentAffinity(bookmarks []domain.Bookmark) domain.ContentAffinity {
	counts := make(map[string]int)
	for _, b := range bookmarks {
		counts[domain.InferCategory(b.URL)]++
	}

	dist := make(map[string]float64, len(counts))
	cats := make([]string, 0, len(counts))
	for c, n := range counts {
		dist[c] = math.Round(float64(n)/float64(len(bookmarks))*10000) / 100
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] != counts[cats[j]] {
			return counts[cats[i]] > counts[cats[j]]
		}
		return cats[i] < cats[j]
	})
	if len(cats) > 5 {
		cats = cats[:5]
	}
	return domain.ContentAffinity{TopCategories: cats, CategoryDistribution: dist}
}

func confidence(t domain.Traits) float64 {
	avg := float64(t.Curiosity+t.Focus+t.Organization+t.Exploration) / 4
	avg = math.Min(100, math.Max(0, avg))
	return math.Round(avg) / 100
}

// Insights applies the fixed insight rules.
func Insights(a Analysis) []domain.Insight {
	var out []domain.Insight
	if a.Traits.Curiosity > 80 {
		out = append(out, domain.Insight{
			InsightType:     "curiosity",
			Title:           "High Curiosity Explorer",
			Description:     "You show strong exploratory behavior with diverse bookmark interests.",
			InsightData:     map[string]any{"score": a.Traits.Curiosity},
			ConfidenceScore: 0.9,
		})
	}
	if a.Traits.Organization > 70 {
		out = append(out, domain.Insight{
			InsightType:     "organization",
			Title:           "Highly Organized",
			Description:     "You maintain excellent organization with folders and tags.",
			InsightData:     map[string]any{"score": a.Traits.Organization},
			ConfidenceScore: 0.85,
		})
	}
	if len(a.PeakHours) > 0 {
		hours := make([]string, len(a.PeakHours))
		for i, h := range a.PeakHours {
			hours[i] = strconv.Itoa(h)
		}
		out = append(out, domain.Insight{
			InsightType:     "timing",
			Title:           "Peak Activity Pattern",
			Description:     fmt.Sprintf("You're most active during %s:00 hours.", strings.Join(hours, ", ")),
			InsightData:     map[string]any{"peakHours": a.PeakHours},
			ConfidenceScore: 0.75,
		})
	}
	return out
}

// Recommendations applies the fixed recommendation rules.
func Recommendations(a Analysis) []domain.Recommendation {
	var out []domain.Recommendation
	if a.Traits.Organization < 50 {
		out = append(out, domain.Recommendation{
			RecommendationType: "organization",
			Title:              "Improve Organization",
			Description:        "Consider creating folders to better organize your bookmarks.",
			ActionData:         map[string]any{"action": "create_folders", "suggested_count": 3},
			PriorityScore:      80,
		})
	}
	if a.InteractionStyle.TaggingBehavior == "none" {
		out = append(out, domain.Recommendation{
			RecommendationType: "tagging",
			Title:              "Start Using Tags",
			Description:        "Tags can help you find bookmarks faster and organize by topics.",
			ActionData:         map[string]any{"action": "add_tags", "suggested_tags": a.ContentAffinity.TopCategories},
			PriorityScore:      60,
		})
	}
	if len(a.ContentAffinity.TopCategories) < 3 {
		out = append(out, domain.Recommendation{
			RecommendationType: "exploration",
			Title:              "Explore New Categories",
			Description:        "Diversify your bookmarks to discover new interests.",
			ActionData:         map[string]any{"action": "explore_categories", "suggested_categories": []string{"productivity", "learning", "tools"}},
			PriorityScore:      40,
		})
	}
	return out
}

// Frequency classifies how regularly events arrive: "daily" when anything
// happened in the last day, "weekly" with more than three events in the last
// week, "sporadic" otherwise or when there is too little history.
func Frequency(events []domain.DNAEvent, now time.Time) string {
	if len(events) < 7 {
		return "sporadic"
	}
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)
	week := 0
	for _, e := range events {
		if e.CreatedAt.After(dayAgo) {
			return "daily"
		}
		if e.CreatedAt.After(weekAgo) {
			week++
		}
	}
	if week > 3 {
		return "weekly"
	}
	return "sporadic"
}
