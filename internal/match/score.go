package match

import (
	"math"
	"regexp"
	"strings"
)

const (
	scoreBasisTokens = "token_intersection"
	scoreBasisFuzzy  = "fuzzy_fallback"

	// Any shared token guarantees at least this much score, so a single
	// strong token never rounds to "no relation".
	tokenScoreFloor = 0.15

	// Fuzzy matches are a weak signal and are scaled down accordingly.
	fuzzyScoreWeight = 0.3
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9+]+`)

// overlapScore computes the diagnostic similarity between a URL slug and a
// record title. Token intersection wins when any token is shared; otherwise a
// trigram similarity provides a weak fallback.
func overlapScore(slug, title string) (float64, string) {
	slugTokens := tokenize(slug)
	titleTokens := tokenize(title)

	common := 0
	for token := range slugTokens {
		if _, ok := titleTokens[token]; ok {
			common++
		}
	}
	if common > 0 {
		longest := len(slugTokens)
		if len(titleTokens) > longest {
			longest = len(titleTokens)
		}
		score := float64(common) / float64(longest)
		if score < tokenScoreFloor {
			score = tokenScoreFloor
		}
		return round2(score), scoreBasisTokens
	}

	return round2(trigramJaccard(strings.ToLower(slug), strings.ToLower(title)) * fuzzyScoreWeight), scoreBasisFuzzy
}

// tokenize splits text into lowercase tokens of three or more characters,
// keeping '+' so initialisms like lgbtqia+ survive.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len(token) >= 3 {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

func trigramJaccard(a, b string) float64 {
	left := trigrams(a)
	right := trigrams(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	intersection := 0
	for gram := range left {
		if _, ok := right[gram]; ok {
			intersection++
		}
	}
	union := len(left) + len(right) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func trigrams(s string) map[string]struct{} {
	grams := make(map[string]struct{})
	runes := []rune(s)
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
