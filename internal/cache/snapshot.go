package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"modscout/internal/decision"
	"modscout/internal/record"
	"modscout/internal/services"
)

// SnapshotFormatVersion is the current snapshot file format version.
const SnapshotFormatVersion = 1

// SnapshotMeta describes a snapshot file.
type SnapshotMeta struct {
	FormatVersion int       `json:"format_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// Snapshot is the portable subset of engine state: the catalog records, the
// match cache, and the decision log. The absent cache is local working state
// and never travels in a snapshot.
type Snapshot struct {
	Meta        SnapshotMeta        `json:"meta"`
	Records     []record.Record     `json:"records"`
	MatchCache  []Entry             `json:"match_cache"`
	DecisionLog []decision.Decision `json:"decision_log"`
}

// rawSnapshot distinguishes missing sections from empty ones during import
// validation.
type rawSnapshot struct {
	Meta        *SnapshotMeta        `json:"meta"`
	Records     *[]record.Record     `json:"records"`
	MatchCache  *[]Entry             `json:"match_cache"`
	DecisionLog *[]decision.Decision `json:"decision_log"`
}

// ExportSnapshot writes a snapshot to path atomically (temp file + rename).
func ExportSnapshot(path string, records []record.Record, matchCache []Entry, decisionLog []decision.Decision) error {
	if records == nil {
		records = []record.Record{}
	}
	if matchCache == nil {
		matchCache = []Entry{}
	}
	if decisionLog == nil {
		decisionLog = []decision.Decision{}
	}
	snapshot := Snapshot{
		Meta:        SnapshotMeta{FormatVersion: SnapshotFormatVersion, CreatedAt: time.Now().UTC()},
		Records:     records,
		MatchCache:  matchCache,
		DecisionLog: decisionLog,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ImportSnapshot reads and fully validates a snapshot file. Validation is
// all-or-nothing: the caller only receives a snapshot when every required
// section is present, the format version is supported, and every carried
// decision is structurally valid. Nothing about local state is touched here;
// applying the snapshot is the engine's job.
func ImportSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "snapshot", "import", "read snapshot file", err)
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, services.Wrap(services.ErrValidation, "snapshot", "import", "parse snapshot file", err)
	}

	switch {
	case raw.Meta == nil:
		return nil, services.Wrap(services.ErrValidation, "snapshot", "import", "missing meta section", nil)
	case raw.Records == nil:
		return nil, services.Wrap(services.ErrValidation, "snapshot", "import", "missing records section", nil)
	case raw.MatchCache == nil:
		return nil, services.Wrap(services.ErrValidation, "snapshot", "import", "missing match_cache section", nil)
	case raw.DecisionLog == nil:
		return nil, services.Wrap(services.ErrValidation, "snapshot", "import", "missing decision_log section", nil)
	}
	if raw.Meta.FormatVersion != SnapshotFormatVersion {
		return nil, services.Wrap(services.ErrValidation, "snapshot", "import",
			fmt.Sprintf("unsupported format version %d (expected %d)", raw.Meta.FormatVersion, SnapshotFormatVersion), nil)
	}

	for _, d := range *raw.DecisionLog {
		if err := d.Validate(); err != nil {
			return nil, services.Wrap(services.ErrValidation, "snapshot", "import",
				fmt.Sprintf("invalid decision %s", d.Fingerprint), err)
		}
	}
	for _, entry := range *raw.MatchCache {
		if entry.Fingerprint == "" {
			return nil, services.Wrap(services.ErrValidation, "snapshot", "import",
				"match cache entry missing fingerprint", nil)
		}
		if err := entry.Decision.Validate(); err != nil {
			return nil, services.Wrap(services.ErrValidation, "snapshot", "import",
				fmt.Sprintf("invalid cached decision %s", entry.Fingerprint), err)
		}
		if entry.Decision.Outcome != decision.OutcomeFound {
			return nil, services.Wrap(services.ErrValidation, "snapshot", "import",
				fmt.Sprintf("match cache entry %s carries a %s decision", entry.Fingerprint, entry.Decision.Outcome), nil)
		}
	}

	return &Snapshot{
		Meta:        *raw.Meta,
		Records:     *raw.Records,
		MatchCache:  *raw.MatchCache,
		DecisionLog: *raw.DecisionLog,
	}, nil
}
