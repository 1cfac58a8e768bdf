package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"modscout/internal/cache"
	"modscout/internal/decision"
	"modscout/internal/identity"
	"modscout/internal/logging"
	"modscout/internal/match"
	"modscout/internal/services"
)

// Resolution is the full result of resolving one URL: the recorded decision
// plus the diagnostics a caller may want to show.
type Resolution struct {
	Decision       decision.Decision `json:"decision"`
	Candidates     []match.Candidate `json:"candidates,omitempty"`
	CacheHit       bool              `json:"cache_hit"`
	CachePartition cache.Partition   `json:"cache_partition,omitempty"`
	CorrelationID  string            `json:"correlation_id"`
}

// Resolve drives one URL through the full pipeline. Phase failures degrade
// into a valid decision rather than an error: the only error cases are caller
// misuse (empty URL) and an unreachable catalog on first index load.
//
// Every resolution, including a cache hit, upserts the decision log so the
// log always reflects the latest answer per fingerprint.
func (e *Engine) Resolve(ctx context.Context, rawURL string) (Resolution, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Resolution{}, services.Wrap(services.ErrValidation, "engine", "resolve", "url required", nil)
	}

	started := time.Now()
	correlationID := uuid.NewString()
	ctx = services.WithURL(ctx, rawURL)
	ctx = services.WithCorrelationID(ctx, correlationID)
	logger := logging.WithContext(ctx, e.logger)

	if err := e.ensureIndex(ctx); err != nil {
		return Resolution{}, err
	}
	ix := e.state.currentIndex()
	storeFingerprint := ix.ContentFingerprint()

	fetched := e.fetcher.Fetch(ctx, rawURL)
	id := identity.Extract(rawURL, fetched)
	fingerprint := id.Fingerprint()
	logger.Debug("identity extracted",
		logging.String(logging.FieldPhase, "identity"),
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.String("name", id.Name),
		logging.Bool("blocked", id.Blocked),
		logging.String("fetch_outcome", string(fetched.Outcome)))

	// A cached decision only counts when it was made against the catalog
	// content we are resolving against right now.
	if entry, partition, ok := e.state.caches.Lookup(fingerprint); ok {
		if entry.Decision.StoreFingerprint == storeFingerprint {
			e.recordDecision(ctx, logger, entry.Decision, false)
			logger.Info("resolution served from cache",
				logging.String(logging.FieldFingerprint, fingerprint),
				logging.String(logging.FieldOutcome, string(entry.Decision.Outcome)),
				logging.String("partition", string(partition)))
			return Resolution{
				Decision:       entry.Decision,
				CacheHit:       true,
				CachePartition: partition,
				CorrelationID:  correlationID,
			}, nil
		}
		logger.Debug("ignoring stale cache entry",
			logging.String(logging.FieldPhase, "cache"),
			logging.String(logging.FieldFingerprint, fingerprint),
			logging.String("cached_store_fingerprint", entry.Decision.StoreFingerprint))
	}

	candidates := match.FindCandidates(id, ix, e.cfg.Arbitration.CandidateLimit)
	ambiguity := match.ClassifyAmbiguity(len(candidates))

	d := e.decide(ctx, id, candidates, ambiguity)
	d.Fingerprint = fingerprint
	d.Identity = id
	d.DecidedAt = e.clock()
	d.CandidateCount = len(candidates)
	d.Ambiguity = ambiguity
	d.StoreFingerprint = storeFingerprint

	e.recordDecision(ctx, logger, d, true)
	logger.Info("resolution decided",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.String(logging.FieldOutcome, string(d.Outcome)),
		logging.String("outcome_source", string(d.OutcomeSource)),
		logging.Int("candidates", len(candidates)),
		logging.String("reason", d.Reason),
		logging.Duration("elapsed", time.Since(started)))

	return Resolution{
		Decision:      d,
		Candidates:    candidates,
		CorrelationID: correlationID,
	}, nil
}

// decide maps the deterministic search shape, and where gated, a judge
// verdict, onto the outcome fields of a decision. The caller fills in the
// identity and bookkeeping fields.
func (e *Engine) decide(ctx context.Context, id identity.Identity, candidates []match.Candidate, ambiguity match.Ambiguity) decision.Decision {
	switch ambiguity {
	case match.AmbiguityNone:
		return decision.Decision{
			Outcome:       decision.OutcomeNotFound,
			OutcomeSource: decision.SourceDeterministic,
			Reason:        "no deterministic candidates",
		}
	case match.AmbiguityUnique:
		return decision.Decision{
			Outcome:         decision.OutcomeFound,
			OutcomeSource:   decision.SourceDeterministic,
			Reason:          "single deterministic candidate",
			MatchedRecordID: candidates[0].RecordID,
		}
	}

	if !e.arbiter.ShouldArbitrate(id, ambiguity) {
		return decision.Decision{
			Outcome:       decision.OutcomeNotFound,
			OutcomeSource: decision.SourceDeterministic,
			Reason:        "strong identity; judge skipped",
		}
	}

	verdict := e.arbiter.Arbitrate(ctx, id, candidates)
	if e.arbiter.Accepts(verdict) {
		return decision.Decision{
			ArbitrationInvoked: true,
			ArbitrationResult:  verdict,
			Outcome:            decision.OutcomeFound,
			OutcomeSource:      decision.SourceArbitrationConfirmed,
			Reason:             fmt.Sprintf("judge confirmed with confidence %.2f", verdict.Confidence),
			MatchedRecordID:    bestCandidate(candidates).RecordID,
		}
	}
	return decision.Decision{
		ArbitrationInvoked: true,
		ArbitrationResult:  verdict,
		Outcome:            decision.OutcomeNotFound,
		OutcomeSource:      decision.SourceArbitrationRejected,
		Reason:             "ambiguous, judge could not confirm",
	}
}

// bestCandidate picks the highest-scored candidate, first wins on ties.
func bestCandidate(candidates []match.Candidate) match.Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best
}

// recordDecision persists a decision to the log and, for fresh decisions,
// the cache. Persistence failures are logged and swallowed: the resolution
// outcome stands even when the state directory misbehaves.
func (e *Engine) recordDecision(ctx context.Context, logger *slog.Logger, d decision.Decision, fresh bool) {
	if err := e.state.log.Upsert(ctx, d); err != nil {
		logger.Warn("decision log upsert failed",
			logging.String(logging.FieldFingerprint, d.Fingerprint),
			logging.Error(err))
	}
	if !fresh {
		return
	}
	if err := e.state.caches.Put(d); err != nil {
		logger.Warn("decision cache write failed",
			logging.String(logging.FieldFingerprint, d.Fingerprint),
			logging.Error(err))
	}
}
