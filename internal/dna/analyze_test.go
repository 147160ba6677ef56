package dna

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

func event(typ string, at time.Time) domain.DNAEvent {
	return domain.DNAEvent{EventType: typ, CreatedAt: at}
}

func TestAnalyze_Empty(t *testing.T) {
	a := Analyze(nil, nil, nil)

	assert.Equal(t, domain.Traits{}, a.Traits)
	assert.Empty(t, a.PeakHours)
	assert.Equal(t, "minimal", a.InteractionStyle.OrganizationLevel)
	assert.Equal(t, "none", a.InteractionStyle.TaggingBehavior)
	assert.Equal(t, "flat", a.InteractionStyle.FolderUsage)
	assert.Equal(t, "structured", a.LearningStyle.Preference)
	assert.Equal(t, "broad", a.LearningStyle.Pace)
	assert.Zero(t, a.Confidence)

	recs := Recommendations(a)
	require.Len(t, recs, 3)
	assert.Equal(t, "Improve Organization", recs[0].Title)
	assert.Equal(t, "Start Using Tags", recs[1].Title)
	assert.Equal(t, "Explore New Categories", recs[2].Title)
	assert.Empty(t, Insights(a))
}

func TestAnalyze_Traits(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	var events []domain.DNAEvent
	for i := 0; i < 15; i++ {
		events = append(events, event(domain.EventBookmarkAdded, base.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 5; i++ {
		events = append(events, event(domain.EventBookmarkVisited, base.Add(5*time.Hour)))
	}
	events = append(events, event(domain.EventTagAdded, base.Add(2*time.Hour)))

	bookmarks := []domain.Bookmark{
		{URL: "https://github.com/a"},
		{URL: "https://github.com/b"},
		{URL: "https://www.youtube.com/watch"},
		{URL: "https://news.ycombinator.com"},
	}
	parent := "p"
	folders := []domain.Folder{{ID: "p"}, {ID: "c", ParentID: &parent}}

	a := Analyze(events, bookmarks, folders)

	// 3 unique hosts over 4 bookmarks * 200 = 150, clamped.
	assert.Equal(t, 100, a.Traits.Curiosity)
	// 5 visits over 21 events * 150 = 35.7
	assert.Equal(t, 36, a.Traits.Focus)
	// 2 folders * 10 + 1 tag event * 5
	assert.Equal(t, 25, a.Traits.Organization)
	// 15 additions over 30 days * 100
	assert.Equal(t, 50, a.Traits.Exploration)

	assert.Equal(t, []int{9, 14, 11}, a.PeakHours)
	assert.Equal(t, "extensive", a.InteractionStyle.OrganizationLevel)
	assert.Equal(t, "basic", a.InteractionStyle.TaggingBehavior)
	assert.Equal(t, "hierarchical", a.InteractionStyle.FolderUsage)

	assert.Equal(t, []string{"development", "entertainment", "news"}, a.ContentAffinity.TopCategories)
	assert.Equal(t, 50.0, a.ContentAffinity.CategoryDistribution["development"])

	// (100+36+25+50)/400 = 0.5275
	assert.Equal(t, 0.53, a.Confidence)

	insights := Insights(a)
	require.Len(t, insights, 2)
	assert.Equal(t, "High Curiosity Explorer", insights[0].Title)
	assert.Equal(t, "You're most active during 9, 14, 11:00 hours.", insights[1].Description)

	recs := Recommendations(a)
	require.Len(t, recs, 1)
	assert.Equal(t, "organization", recs[0].RecommendationType)
}

func TestInteractionStyle_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		bookmarks int
		folders   int
		nested    int
		tagEvents int
		wantLevel string
		wantUsage string
		wantTags  string
	}{
		{"crowded folders", 30, 2, 0, 0, "moderate", "flat", "none"},
		{"sparse folders", 10, 2, 0, 12, "extensive", "flat", "detailed"},
		{"few nested", 5, 10, 3, 1, "extensive", "mixed", "basic"},
		{"many nested", 5, 10, 4, 0, "extensive", "hierarchical", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookmarks := make([]domain.Bookmark, tt.bookmarks)
			folders := make([]domain.Folder, tt.folders)
			root := "root"
			for i := 0; i < tt.nested; i++ {
				folders[i].ParentID = &root
			}
			events := make([]domain.DNAEvent, tt.tagEvents)
			for i := range events {
				events[i].EventType = domain.EventTagAdded
			}

			got := interactionStyle(events, bookmarks, folders)
			assert.Equal(t, tt.wantLevel, got.OrganizationLevel)
			assert.Equal(t, tt.wantUsage, got.FolderUsage)
			assert.Equal(t, tt.wantTags, got.TaggingBehavior)
		})
	}
}

func TestLearningStyle(t *testing.T) {
	ls := learningStyle(domain.Traits{Exploration: 71, Focus: 80}, domain.InteractionStyle{OrganizationLevel: "moderate"})
	assert.Equal(t, domain.LearningStyle{Preference: "exploratory", Pace: "deep", Organization: "moderate"}, ls)
}

func TestAnalysisProfile(t *testing.T) {
	a := Analyze(nil, []domain.Bookmark{{URL: "https://github.com"}}, nil)
	p := a.Profile("owner")
	assert.Equal(t, "owner", p.UserID)
	assert.Equal(t, AnalysisVersion, p.AnalysisVersion)
	assert.Equal(t, 100, p.Traits.Curiosity)
}

func TestFrequency(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(ago time.Duration, n int) []domain.DNAEvent {
		out := make([]domain.DNAEvent, n)
		for i := range out {
			out[i] = event(domain.EventBookmarkAdded, now.Add(-ago))
		}
		return out
	}

	tests := []struct {
		name   string
		events []domain.DNAEvent
		want   string
	}{
		{"too few", at(time.Hour, 6), "sporadic"},
		{"recent", at(time.Hour, 7), "daily"},
		{"this week", at(3*24*time.Hour, 7), "weekly"},
		{"old", at(20*24*time.Hour, 10), "sporadic"},
		{"three this week", append(at(3*24*time.Hour, 3), at(20*24*time.Hour, 5)...), "sporadic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Frequency(tt.events, now))
		})
	}
}
