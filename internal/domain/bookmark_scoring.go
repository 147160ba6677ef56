package domain

import (
	"math"
	"sort"
	"strings"
)

// BookmarkCandidate represents a bookmark candidate with its match score
type BookmarkCandidate struct {
	Bookmark     *Bookmark
	LexicalScore float64 // best weighted field score
	TotalScore   float64 // lexical + usage
}

// ScoreText scores how well query matches a single text field.
func ScoreText(query, text string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	text = strings.ToLower(strings.TrimSpace(text))
	if query == "" || text == "" {
		return 0.0
	}

	// Exact match (highest score)
	if query == text {
		return ScoreExactMatch + ScoreExactTitleBonus
	}

	// Prefix match
	if strings.HasPrefix(text, query) {
		return ScorePrefixMatch
	}

	// Substring match
	if idx := strings.Index(text, query); idx >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(idx)/float64(len(text)))
		return ScoreSubstringMatch + substringBonus
	}

	// Fuzzy match (word-based): every query word appears somewhere
	queryWords := splitAndClean(query, " ")
	if len(queryWords) > 1 {
		allMatch := true
		for _, word := range queryWords {
			if !strings.Contains(text, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	// Character similarity, only meaningful for short fields
	if len(text) <= 64 {
		if similarity := calculateSimilarity(query, text); similarity > 0.5 {
			return ScoreFuzzyMatch * similarity
		}
	}

	return 0.0
}

// ScoreBookmark returns the best weighted field score of bookmark for query.
func ScoreBookmark(query string, bookmark *Bookmark) float64 {
	if bookmark == nil || strings.TrimSpace(query) == "" {
		return 0.0
	}

	best := ScoreText(query, bookmark.Title) * WeightTitle
	if s := ScoreText(query, Hostname(bookmark.URL)) * WeightHost; s > best {
		best = s
	}
	if s := ScoreText(query, bookmark.Description) * WeightDescription; s > best {
		best = s
	}
	if s := ScoreText(query, bookmark.Notes) * WeightDescription; s > best {
		best = s
	}
	return best
}

// usageScore rewards frequently visited and favorite bookmarks.
func usageScore(b *Bookmark) float64 {
	score := math.Log1p(float64(b.VisitCount)) * ScoreUsageWeight * ScorePositionBonus
	if b.IsFavorite {
		score += ScoreFavoriteBonus
	}
	return score
}

// RankBookmarkCandidates ranks bookmarks by score, dropping non-matches.
// Archived bookmarks stay searchable but never get the usage boost.
func RankBookmarkCandidates(query string, bookmarks []*Bookmark) []*BookmarkCandidate {
	candidates := make([]*BookmarkCandidate, 0, len(bookmarks))

	for _, bookmark := range bookmarks {
		lexical := ScoreBookmark(query, bookmark)
		if lexical == 0.0 {
			continue
		}

		total := lexical
		if !bookmark.IsArchived {
			total += usageScore(bookmark)
		}

		candidates = append(candidates, &BookmarkCandidate{
			Bookmark:     bookmark,
			LexicalScore: lexical,
			TotalScore:   total,
		})
	}

	sortBookmarkCandidates(candidates)

	return candidates
}

// sortBookmarkCandidates sorts by score descending, newest first on ties.
func sortBookmarkCandidates(candidates []*BookmarkCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TotalScore != candidates[j].TotalScore {
			return candidates[i].TotalScore > candidates[j].TotalScore
		}
		return candidates[i].Bookmark.CreatedAt.After(candidates[j].Bookmark.CreatedAt)
	})
}

// RankBookmarks is RankBookmarkCandidates without the scores.
func RankBookmarks(query string, bookmarks []*Bookmark) []*Bookmark {
	candidates := RankBookmarkCandidates(query, bookmarks)
	out := make([]*Bookmark, len(candidates))
	for i, c := range candidates {
		out[i] = c.Bookmark
	}
	return out
}
