package domain

import (
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Exact title match bonus (huge boost)
	ScoreExactTitleBonus = 200.0

	// Field weights: a title hit outranks a host hit, which outranks a description hit.
	WeightTitle       = 1.0
	WeightHost        = 0.8
	WeightDescription = 0.5

	// Usage weight (visit counter contributes to final score)
	ScoreUsageWeight = 0.1
	// Favorites get a flat nudge
	ScoreFavoriteBonus = 5.0
)

// calculateSimilarity calculates fuzzy similarity between two strings
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	// Simple similarity: ratio of matching characters
	matches := 0
	total := 0
	for _, c := range s1 {
		total++
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(total)
}

// splitAndClean splits s by sep and drops empty parts.
func splitAndClean(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
