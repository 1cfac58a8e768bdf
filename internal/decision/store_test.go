package decision

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"modscout/internal/arbiter"
	"modscout/internal/identity"
	"modscout/internal/match"
	"modscout/internal/services"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := OpenPath(filepath.Join(t.TempDir(), "decisions.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func sampleDecision(fingerprint string) Decision {
	return Decision{
		Fingerprint: fingerprint,
		Identity: identity.Identity{
			URL:    "https://mods.example/night-market",
			Name:   "Night Market",
			Domain: "mods.example",
			Slug:   "night market",
		},
		DecidedAt:        time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC),
		CandidateCount:   2,
		Ambiguity:        match.AmbiguityAmbiguous,
		Outcome:          OutcomeNotFound,
		OutcomeSource:    SourceDeterministic,
		Reason:           "ambiguous, judge skipped",
		StoreFingerprint: "store-abc",
	}
}

func TestUpsertAndGetRoundTrip(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	want := sampleDecision("fp-1")
	want.ArbitrationInvoked = true
	want.ArbitrationResult = &arbiter.Verdict{Match: true, Confidence: 0.95, Model: "test-model"}
	want.Outcome = OutcomeFound
	want.OutcomeSource = SourceArbitrationConfirmed
	want.MatchedRecordID = "rec-7"
	want.Reason = "judge confirmed with confidence 0.95"

	if err := log.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := log.GetByFingerprint(ctx, "fp-1")
	if err != nil {
		t.Fatalf("GetByFingerprint: %v", err)
	}
	if got == nil {
		t.Fatal("decision not found")
	}
	if got.Identity != want.Identity {
		t.Errorf("identity = %+v, want %+v", got.Identity, want.Identity)
	}
	if !got.DecidedAt.Equal(want.DecidedAt) {
		t.Errorf("decided_at = %v, want %v", got.DecidedAt, want.DecidedAt)
	}
	if got.Outcome != OutcomeFound || got.OutcomeSource != SourceArbitrationConfirmed {
		t.Errorf("outcome = %s/%s", got.Outcome, got.OutcomeSource)
	}
	if got.MatchedRecordID != "rec-7" || got.StoreFingerprint != "store-abc" {
		t.Errorf("record = %q, store = %q", got.MatchedRecordID, got.StoreFingerprint)
	}
	if got.ArbitrationResult == nil || got.ArbitrationResult.Confidence != 0.95 || got.ArbitrationResult.Model != "test-model" {
		t.Errorf("arbitration = %+v", got.ArbitrationResult)
	}
}

func TestGetByFingerprintMissingReturnsNil(t *testing.T) {
	log := openTestLog(t)
	got, err := log.GetByFingerprint(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByFingerprint: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestUpsertReplacesEarlierDecision(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	first := sampleDecision("fp-1")
	if err := log.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	second := first
	second.DecidedAt = first.DecidedAt.Add(time.Hour)
	second.Outcome = OutcomeFound
	second.OutcomeSource = SourceDeterministic
	second.MatchedRecordID = "rec-1"
	second.CandidateCount = 1
	second.Ambiguity = match.AmbiguityUnique
	second.Reason = "single deterministic candidate"
	if err := log.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	all, err := log.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("len(all) = %d, want 1", len(all))
	}
	if all[0].Outcome != OutcomeFound || all[0].MatchedRecordID != "rec-1" {
		t.Errorf("kept decision = %+v, want the later one", all[0])
	}
}

func TestUpsertRejectsInvalidDecision(t *testing.T) {
	log := openTestLog(t)
	bad := sampleDecision("fp-1")
	bad.Outcome = OutcomeFound // FOUND without matched record id
	if err := log.Upsert(context.Background(), bad); !errors.Is(err, services.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	older := sampleDecision("fp-older")
	newer := sampleDecision("fp-newer")
	newer.DecidedAt = older.DecidedAt.Add(time.Minute)
	for _, d := range []Decision{older, newer} {
		if err := log.Upsert(ctx, d); err != nil {
			t.Fatalf("Upsert %s: %v", d.Fingerprint, err)
		}
	}

	all, err := log.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Fingerprint != "fp-newer" {
		t.Errorf("order = %v", fingerprints(all))
	}
}

func TestReplaceAllSwapsLogAtomically(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	if err := log.Upsert(ctx, sampleDecision("fp-old")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	replacement := []Decision{sampleDecision("fp-a"), sampleDecision("fp-b")}
	if err := log.ReplaceAll(ctx, replacement); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	all, err := log.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := fingerprints(all)
	if len(got) != 2 || got[0] == "fp-old" || got[1] == "fp-old" {
		t.Errorf("fingerprints = %v, want only replacement rows", got)
	}
}

func TestReplaceAllRejectsInvalidBatch(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	if err := log.Upsert(ctx, sampleDecision("fp-old")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	bad := sampleDecision("fp-bad")
	bad.Outcome = Outcome("MAYBE")
	err := log.ReplaceAll(ctx, []Decision{sampleDecision("fp-good"), bad})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	all, err := log.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].Fingerprint != "fp-old" {
		t.Errorf("log after failed replace = %v, want untouched", fingerprints(all))
	}
}

func TestClearRemovesAllRows(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	for _, fp := range []string{"fp-1", "fp-2", "fp-3"} {
		if err := log.Upsert(ctx, sampleDecision(fp)); err != nil {
			t.Fatalf("Upsert %s: %v", fp, err)
		}
	}

	removed, err := log.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	all, err := log.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("log not empty after clear: %v", fingerprints(all))
	}
}

func fingerprints(decisions []Decision) []string {
	out := make([]string, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, d.Fingerprint)
	}
	return out
}
