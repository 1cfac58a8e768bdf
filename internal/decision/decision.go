package decision

import (
	"fmt"
	"strings"
	"time"

	"modscout/internal/arbiter"
	"modscout/internal/identity"
	"modscout/internal/match"
	"modscout/internal/services"
)

// Outcome is the final answer of a resolution.
type Outcome string

const (
	OutcomeFound    Outcome = "FOUND"
	OutcomeNotFound Outcome = "NOT_FOUND"
)

// Source records which mechanism produced the outcome.
type Source string

const (
	// SourceDeterministic covers every outcome reached without a judge:
	// zero candidates, a unique candidate, or an ambiguity the gate kept
	// away from arbitration.
	SourceDeterministic Source = "DETERMINISTIC"
	// SourceArbitrationConfirmed means a judge verdict cleared the
	// confidence threshold and selected a match.
	SourceArbitrationConfirmed Source = "ARBITRATION_CONFIRMED"
	// SourceArbitrationRejected means arbitration ran but did not produce a
	// confident match, so the resolution fell back to NOT_FOUND.
	SourceArbitrationRejected Source = "ARBITRATION_REJECTED"
)

// Decision is the immutable audit record for one resolution. It snapshots
// the identity as extracted at decision time, the deterministic search shape,
// whether and how arbitration ran, and the catalog state it was decided
// against.
type Decision struct {
	Fingerprint        string            `json:"fingerprint"`
	Identity           identity.Identity `json:"identity"`
	DecidedAt          time.Time         `json:"decided_at"`
	CandidateCount     int               `json:"candidate_count"`
	Ambiguity          match.Ambiguity   `json:"ambiguity"`
	ArbitrationInvoked bool              `json:"arbitration_invoked"`
	ArbitrationResult  *arbiter.Verdict  `json:"arbitration_result,omitempty"`
	Outcome            Outcome           `json:"outcome"`
	OutcomeSource      Source            `json:"outcome_source"`
	Reason             string            `json:"reason"`
	MatchedRecordID    string            `json:"matched_record_id,omitempty"`
	// StoreFingerprint identifies the catalog content this decision was made
	// against. A decision is only reusable while the catalog still hashes to
	// this value.
	StoreFingerprint string `json:"store_fingerprint"`
}

// Validate checks the structural invariants every decision must satisfy
// before it is recorded. The central one couples outcome and match: FOUND
// and a matched record ID always travel together.
func (d Decision) Validate() error {
	if strings.TrimSpace(d.Fingerprint) == "" {
		return services.Wrap(services.ErrValidation, "decision", "validate", "fingerprint required", nil)
	}
	switch d.Outcome {
	case OutcomeFound:
		if strings.TrimSpace(d.MatchedRecordID) == "" {
			return services.Wrap(services.ErrValidation, "decision", "validate", "FOUND outcome requires a matched record id", nil)
		}
	case OutcomeNotFound:
		if strings.TrimSpace(d.MatchedRecordID) != "" {
			return services.Wrap(services.ErrValidation, "decision", "validate",
				fmt.Sprintf("NOT_FOUND outcome must not carry record id %q", d.MatchedRecordID), nil)
		}
	default:
		return services.Wrap(services.ErrValidation, "decision", "validate",
			fmt.Sprintf("unknown outcome %q", d.Outcome), nil)
	}
	switch d.OutcomeSource {
	case SourceDeterministic, SourceArbitrationConfirmed, SourceArbitrationRejected:
	default:
		return services.Wrap(services.ErrValidation, "decision", "validate",
			fmt.Sprintf("unknown outcome source %q", d.OutcomeSource), nil)
	}
	if d.OutcomeSource != SourceDeterministic && !d.ArbitrationInvoked {
		return services.Wrap(services.ErrValidation, "decision", "validate",
			"arbitration outcome source without arbitration invoked", nil)
	}
	if d.OutcomeSource == SourceArbitrationConfirmed && d.Outcome != OutcomeFound {
		return services.Wrap(services.ErrValidation, "decision", "validate",
			"ARBITRATION_CONFIRMED requires a FOUND outcome", nil)
	}
	return nil
}
