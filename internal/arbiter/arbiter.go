package arbiter

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"modscout/internal/config"
	"modscout/internal/identity"
	"modscout/internal/logging"
	"modscout/internal/match"
	"modscout/internal/services/judge"
)

// Backend is one judge endpoint capable of producing a JSON verdict.
type Backend interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// Verdict is a judge's interpreted answer for one ambiguous resolution.
type Verdict struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	// Model records which backend produced the verdict, for audit reasons.
	Model string `json:"model"`
}

// Arbiter gates and runs judge arbitration for ambiguous resolutions.
type Arbiter struct {
	backends []Backend
	cfg      config.Arbitration
	logger   *slog.Logger
}

// New builds an arbiter with judge clients for every configured backend, in
// try order.
func New(cfg *config.Config, logger *slog.Logger) *Arbiter {
	backends := make([]Backend, 0, 2)
	for _, backendCfg := range cfg.JudgeBackends() {
		backends = append(backends, judge.NewClient(backendCfg))
	}
	return NewWithBackends(backends, cfg.Arbitration, logger)
}

// NewWithBackends builds an arbiter over explicit backends. Tests use this to
// inject fakes.
func NewWithBackends(backends []Backend, cfg config.Arbitration, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Arbiter{
		backends: backends,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "arbiter"),
	}
}

// ShouldArbitrate reports whether an ambiguous resolution qualifies for judge
// arbitration. Only ambiguous results with an additional weak-identity signal
// qualify: a blocked page, or a slug too short to be distinctive. Everything
// else is resolved deterministically or left for human review.
func (a *Arbiter) ShouldArbitrate(id identity.Identity, ambiguity match.Ambiguity) bool {
	if ambiguity != match.AmbiguityAmbiguous {
		return false
	}
	return id.Blocked || id.SlugTokenCount() < a.cfg.WeakSlugTokens
}

// ConfidenceThreshold reports the minimum confidence a verdict must reach to
// be accepted.
func (a *Arbiter) ConfidenceThreshold() float64 {
	return a.cfg.ConfidenceThreshold
}

// Accepts reports whether a verdict clears the confidence gate. The threshold
// comparison is inclusive: a verdict at exactly the threshold passes.
func (a *Arbiter) Accepts(verdict *Verdict) bool {
	return verdict != nil && verdict.Match && verdict.Confidence >= a.cfg.ConfidenceThreshold
}

type arbitrationPayload struct {
	IdentitySummary string            `json:"identity_summary"`
	Identity        identity.Identity `json:"identity"`
	Candidates      []match.Candidate `json:"candidates"`
}

type judgeVerdict struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
}

// Arbitrate asks the configured backends, in order and once each, whether the
// identity matches one of the candidates. The first backend that returns a
// decodable verdict wins. Every failure path returns nil: arbitration never
// surfaces an error into the resolution, it simply declines to answer.
func (a *Arbiter) Arbitrate(ctx context.Context, id identity.Identity, candidates []match.Candidate) *Verdict {
	if len(a.backends) == 0 || len(candidates) == 0 {
		return nil
	}

	limit := a.cfg.CandidateLimit
	if limit <= 0 {
		limit = match.DefaultCandidateLimit
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	payload := arbitrationPayload{
		IdentitySummary: id.Summary(),
		Identity:        id,
		Candidates:      candidates,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		a.logger.Warn("encode arbitration payload failed", logging.Error(err))
		return nil
	}
	userPrompt := strings.Join([]string{
		"Decide whether the mod described below is already present among the candidate records.",
		string(encoded),
	}, "\n\n")

	for _, backend := range a.backends {
		raw, err := backend.CompleteJSON(ctx, verdictSystemPrompt, userPrompt)
		if err != nil {
			a.logger.Warn("judge backend failed",
				logging.String("model", backend.Model()),
				logging.Error(err))
			continue
		}
		var decoded judgeVerdict
		if err := judge.DecodeJudgeJSON(raw, &decoded); err != nil {
			a.logger.Warn("judge verdict undecodable",
				logging.String("model", backend.Model()),
				logging.Error(err))
			continue
		}
		verdict := &Verdict{
			Match:      decoded.Match,
			Confidence: clampConfidence(decoded.Confidence),
			Model:      backend.Model(),
		}
		a.logger.Debug("judge verdict decoded", logging.Any("verdict", verdict))
		return verdict
	}
	return nil
}

func clampConfidence(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}
