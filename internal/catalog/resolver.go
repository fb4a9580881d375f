package catalog

import (
	"fmt"
	"strings"
)

// minFuzzyScore is the score a fuzzy candidate must exceed to be accepted.
const minFuzzyScore = 1.0

// ResolveScene looks a scene name up in scenes. The name is lowercased and
// matched exactly; on a miss the closest entry by FuzzyScore is returned if
// its score exceeds 1. Ties go to the earliest entry in catalog order.
func ResolveScene(name string, scenes *Index) (string, error) {
	query := NormalizeScene(name)
	if query == "" {
		return "", fmt.Errorf("%w: empty name", ErrSceneNotFound)
	}

	if id, ok := scenes.Lookup(query); ok {
		return id, nil
	}

	if id, ok := fuzzyMatch(query, scenes); ok {
		return id, nil
	}

	return "", fmt.Errorf("%w: %q", ErrSceneNotFound, query)
}

func fuzzyMatch(query string, scenes *Index) (string, bool) {
	bestScore := 0.0
	bestID := ""

	for _, e := range scenes.entries {
		score := FuzzyScore(query, e.Name)
		if score > bestScore {
			bestScore = score
			bestID = e.ID
		}
	}

	return bestID, bestScore > minFuzzyScore
}

// FuzzyScore rates how close query is to candidate. A substring relation in
// either direction scores 3 * the shorter length; otherwise each query
// character that appears anywhere in candidate scores 1. The result is divided
// by 1 + the absolute length difference. Lengths are in runes.
func FuzzyScore(query, candidate string) float64 {
	ql := len([]rune(query))
	cl := len([]rune(candidate))

	var score float64
	if strings.Contains(candidate, query) || strings.Contains(query, candidate) {
		score = 3 * float64(min(ql, cl))
	} else {
		for _, r := range query {
			if strings.ContainsRune(candidate, r) {
				score++
			}
		}
	}

	diff := ql - cl
	if diff < 0 {
		diff = -diff
	}
	return score / float64(1+diff)
}
