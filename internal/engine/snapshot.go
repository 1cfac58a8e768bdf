package engine

import (
	"context"

	"modscout/internal/cache"
	"modscout/internal/logging"
	"modscout/internal/record"
)

// ExportSnapshot writes the portable engine state (catalog records, match
// cache, decision log) to path. The absent cache stays local.
func (e *Engine) ExportSnapshot(ctx context.Context, path string) error {
	if err := e.ensureIndex(ctx); err != nil {
		return err
	}
	decisions, err := e.state.log.List(ctx)
	if err != nil {
		return err
	}
	err = cache.ExportSnapshot(path,
		e.state.currentIndex().Records(),
		e.state.caches.MatchEntries(),
		decisions,
	)
	if err != nil {
		return err
	}
	e.logger.Info("snapshot exported",
		logging.String("path", path),
		logging.Int("decisions", len(decisions)))
	return nil
}

// ImportSnapshot replaces the engine's state with a validated snapshot. The
// snapshot is fully validated before any local state changes; the decision
// log swap itself is transactional. The absent cache is untouched except
// where imported match entries displace an absent entry for the same
// fingerprint.
func (e *Engine) ImportSnapshot(ctx context.Context, path string) (*cache.Snapshot, error) {
	snapshot, err := cache.ImportSnapshot(path)
	if err != nil {
		return nil, err
	}

	// The cache file write is the only non-transactional step, so it runs
	// first; a failure here leaves the log and index untouched.
	if err := e.state.caches.ReplaceMatch(snapshot.MatchCache); err != nil {
		return nil, err
	}
	if err := e.state.log.ReplaceAll(ctx, snapshot.DecisionLog); err != nil {
		return nil, err
	}
	e.state.swapIndex(record.NewIndex(snapshot.Records))
	// The index came from the snapshot, not the catalog; the next reload
	// re-syncs with the remote.
	e.markIndexLoaded()

	e.logger.Info("snapshot imported",
		logging.String("path", path),
		logging.Int("records", len(snapshot.Records)),
		logging.Int("match_entries", len(snapshot.MatchCache)),
		logging.Int("decisions", len(snapshot.DecisionLog)))
	return snapshot, nil
}
