package decision

import (
	"errors"
	"testing"

	"modscout/internal/identity"
	"modscout/internal/match"
	"modscout/internal/services"
)

func validFound() Decision {
	return Decision{
		Fingerprint:     "fp-1",
		Identity:        identity.Identity{URL: "https://mods.example/night-market", Name: "Night Market"},
		CandidateCount:  1,
		Ambiguity:       match.AmbiguityUnique,
		Outcome:         OutcomeFound,
		OutcomeSource:   SourceDeterministic,
		Reason:          "single deterministic candidate",
		MatchedRecordID: "rec-1",
	}
}

func TestValidateAcceptsWellFormedDecisions(t *testing.T) {
	if err := validFound().Validate(); err != nil {
		t.Errorf("found decision: %v", err)
	}

	notFound := validFound()
	notFound.Outcome = OutcomeNotFound
	notFound.MatchedRecordID = ""
	notFound.Ambiguity = match.AmbiguityNone
	notFound.CandidateCount = 0
	if err := notFound.Validate(); err != nil {
		t.Errorf("not-found decision: %v", err)
	}
}

func TestValidateCouplesOutcomeAndRecordID(t *testing.T) {
	foundWithoutRecord := validFound()
	foundWithoutRecord.MatchedRecordID = ""
	if err := foundWithoutRecord.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Errorf("FOUND without record id: err = %v", err)
	}

	notFoundWithRecord := validFound()
	notFoundWithRecord.Outcome = OutcomeNotFound
	if err := notFoundWithRecord.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Errorf("NOT_FOUND with record id: err = %v", err)
	}
}

func TestValidateRejectsMalformedDecisions(t *testing.T) {
	noFingerprint := validFound()
	noFingerprint.Fingerprint = "  "
	if err := noFingerprint.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Errorf("blank fingerprint: err = %v", err)
	}

	badOutcome := validFound()
	badOutcome.Outcome = Outcome("MAYBE")
	if err := badOutcome.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Errorf("unknown outcome: err = %v", err)
	}

	badSource := validFound()
	badSource.OutcomeSource = Source("GUESS")
	if err := badSource.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Errorf("unknown source: err = %v", err)
	}

	confirmedWithoutInvocation := validFound()
	confirmedWithoutInvocation.OutcomeSource = SourceArbitrationConfirmed
	confirmedWithoutInvocation.ArbitrationInvoked = false
	if err := confirmedWithoutInvocation.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Errorf("arbitration source without invocation: err = %v", err)
	}

	confirmedNotFound := validFound()
	confirmedNotFound.Outcome = OutcomeNotFound
	confirmedNotFound.MatchedRecordID = ""
	confirmedNotFound.ArbitrationInvoked = true
	confirmedNotFound.OutcomeSource = SourceArbitrationConfirmed
	if err := confirmedNotFound.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Errorf("confirmed NOT_FOUND: err = %v", err)
	}
}
