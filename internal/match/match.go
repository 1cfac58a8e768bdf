package match

import (
	"strings"

	"modscout/internal/identity"
	"modscout/internal/record"
)

// Ambiguity classifies a deterministic search result by candidate count.
type Ambiguity string

const (
	AmbiguityNone      Ambiguity = "none"
	AmbiguityUnique    Ambiguity = "unique"
	AmbiguityAmbiguous Ambiguity = "ambiguous"
)

// DefaultCandidateLimit bounds candidate lists so arbitration payloads stay
// small and human review stays tractable.
const DefaultCandidateLimit = 35

// Candidate is a catalog record that plausibly matches an identity, paired
// with a diagnostic overlap score.
type Candidate struct {
	RecordID   string  `json:"record_id"`
	Title      string  `json:"title"`
	URL        string  `json:"url,omitempty"`
	Score      float64 `json:"score"`
	ScoreBasis string  `json:"score_basis"`
}

// ClassifyAmbiguity maps a candidate count onto the two-bucket ambiguity
// model: zero, exactly one, or more than one.
func ClassifyAmbiguity(count int) Ambiguity {
	switch {
	case count == 0:
		return AmbiguityNone
	case count == 1:
		return AmbiguityUnique
	default:
		return AmbiguityAmbiguous
	}
}

// FindCandidates searches the index for records matching the identity. A
// record qualifies when either rule holds: its stored URL equals the
// identity's URL exactly, or the normalized name appears case-insensitively
// inside its title. Results are deduplicated by record ID in index order and
// capped at limit.
func FindCandidates(id identity.Identity, ix *record.Index, limit int) []Candidate {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	nameLower := strings.ToLower(strings.TrimSpace(id.Name))
	if id.Name == identity.UnknownName {
		// The sentinel is not a real name; matching on it would surface
		// unrelated records.
		nameLower = ""
	}
	targetURL := strings.TrimSpace(id.URL)

	seen := make(map[string]struct{})
	candidates := make([]Candidate, 0, 8)
	for _, rec := range ix.Records() {
		recID := strings.TrimSpace(rec.ID)
		if recID == "" {
			continue
		}
		if _, dup := seen[recID]; dup {
			continue
		}

		urlMatch := targetURL != "" && strings.TrimSpace(rec.URL) == targetURL
		nameMatch := nameLower != "" && strings.Contains(strings.ToLower(rec.Title), nameLower)
		if !urlMatch && !nameMatch {
			continue
		}

		seen[recID] = struct{}{}
		score, basis := overlapScore(id.Slug, rec.Title)
		candidates = append(candidates, Candidate{
			RecordID:   recID,
			Title:      rec.Title,
			URL:        rec.URL,
			Score:      score,
			ScoreBasis: basis,
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates
}
