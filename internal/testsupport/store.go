package testsupport

import (
	"context"
	"testing"
	"time"

	"modscout/internal/config"
	"modscout/internal/decision"
	"modscout/internal/identity"
	"modscout/internal/match"
)

// MustOpenLog opens a decision.Log for tests and registers cleanup.
func MustOpenLog(t testing.TB, cfg *config.Config) *decision.Log {
	t.Helper()

	log, err := decision.Open(cfg)
	if err != nil {
		t.Fatalf("decision.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = log.Close()
	})
	return log
}

// SeedDecision records a minimal valid decision for tests. A non-empty
// matchedRecordID produces a FOUND decision, otherwise NOT_FOUND.
func SeedDecision(t testing.TB, log *decision.Log, url, fingerprint, matchedRecordID string) decision.Decision {
	t.Helper()

	d := decision.Decision{
		Fingerprint: fingerprint,
		Identity: identity.Identity{
			URL:  url,
			Name: "Seeded Mod",
		},
		DecidedAt:     time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC),
		Ambiguity:     match.AmbiguityNone,
		Outcome:       decision.OutcomeNotFound,
		OutcomeSource: decision.SourceDeterministic,
		Reason:        "no deterministic candidates",
	}
	if matchedRecordID != "" {
		d.CandidateCount = 1
		d.Ambiguity = match.AmbiguityUnique
		d.Outcome = decision.OutcomeFound
		d.Reason = "single deterministic candidate"
		d.MatchedRecordID = matchedRecordID
	}
	if err := log.Upsert(context.Background(), d); err != nil {
		t.Fatalf("log.Upsert: %v", err)
	}
	return d
}
