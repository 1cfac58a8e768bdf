package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"modscout/internal/arbiter"
	"modscout/internal/cache"
	"modscout/internal/config"
	"modscout/internal/decision"
	"modscout/internal/fetch"
	"modscout/internal/identity"
	"modscout/internal/logging"
	"modscout/internal/match"
	"modscout/internal/record"
	"modscout/internal/services"
)

// Fetcher retrieves page content for identity extraction.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) fetch.Result
}

// Catalog is the remote record catalog the engine resolves against.
type Catalog interface {
	ListRecords(ctx context.Context) ([]record.Record, error)
	CreateRecord(ctx context.Context, title, url, initialNote string) (*record.Record, error)
	AppendNote(ctx context.Context, recordID, note string) error
}

// Arbitrator gates and runs judge arbitration.
type Arbitrator interface {
	ShouldArbitrate(id identity.Identity, ambiguity match.Ambiguity) bool
	Arbitrate(ctx context.Context, id identity.Identity, candidates []match.Candidate) *arbiter.Verdict
	Accepts(verdict *arbiter.Verdict) bool
}

// PipelineState is the mutable state one engine owns: the in-memory catalog
// index plus handles to the caches and the decision log. The index is only
// swapped at explicit reload points, never mid-resolution.
type PipelineState struct {
	mu     sync.RWMutex
	index  *record.Index
	caches *cache.Store
	log    *decision.Log
}

func (s *PipelineState) currentIndex() *record.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

func (s *PipelineState) swapIndex(ix *record.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = ix
}

// Engine drives resolutions against one state directory.
type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	fetcher Fetcher
	catalog Catalog
	arbiter Arbitrator
	state   *PipelineState
	lock    *flock.Flock
	clock   func() time.Time
	loadMu  sync.Mutex
	loaded  bool
}

// Deps carries the engine's collaborators. Tests inject fakes here; New
// wires the production set.
type Deps struct {
	Fetcher Fetcher
	Catalog Catalog
	Arbiter Arbitrator
	Caches  *cache.Store
	Log     *decision.Log
	Clock   func() time.Time
}

// New builds a production engine: HTTP fetcher, catalog client, judge-backed
// arbiter, file caches, SQLite decision log, and an exclusive lock on the
// state directory.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "ensure directories", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "modscout.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "acquire state lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new",
			fmt.Sprintf("state directory %s is locked by another modscout instance", cfg.Paths.StateDir), nil)
	}

	catalog, err := record.NewClient(cfg.Catalog)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	log, err := decision.Open(cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	eng := NewWithDeps(cfg, logger, Deps{
		Fetcher: fetch.NewClient(cfg.Fetch),
		Catalog: catalog,
		Arbiter: arbiter.New(cfg, logger),
		Caches:  cache.NewStore(cfg, logger),
		Log:     log,
	})
	eng.lock = lock
	return eng, nil
}

// NewWithDeps builds an engine over explicit collaborators. No state lock is
// taken.
func NewWithDeps(cfg *config.Config, logger *slog.Logger, deps Deps) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "engine"),
		fetcher: deps.Fetcher,
		catalog: deps.Catalog,
		arbiter: deps.Arbiter,
		state: &PipelineState{
			caches: deps.Caches,
			log:    deps.Log,
		},
		clock: clock,
	}
}

// Close releases the decision log and the state directory lock.
func (e *Engine) Close() error {
	var firstErr error
	if e.state.log != nil {
		firstErr = e.state.log.Close()
	}
	if e.lock != nil {
		if err := e.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ensureIndex loads the catalog index before the first resolution that needs
// it. A failed load is retried on the next call, so a catalog outage during
// startup does not poison the engine.
func (e *Engine) ensureIndex(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if e.loaded {
		return nil
	}
	if _, _, err := e.reloadIndex(ctx); err != nil {
		return err
	}
	e.loaded = true
	return nil
}

// markIndexLoaded records that the current index is usable, clearing any
// earlier failed-load state.
func (e *Engine) markIndexLoaded() {
	e.loadMu.Lock()
	e.loaded = true
	e.loadMu.Unlock()
}

// ReloadIndex refreshes the catalog index from the remote catalog and drops
// every cache entry recorded against a different catalog state. It returns
// the record count and the new store fingerprint.
func (e *Engine) ReloadIndex(ctx context.Context) (int, string, error) {
	n, fingerprint, err := e.reloadIndex(ctx)
	if err == nil {
		e.markIndexLoaded()
	}
	return n, fingerprint, err
}

func (e *Engine) reloadIndex(ctx context.Context) (int, string, error) {
	records, err := e.catalog.ListRecords(ctx)
	if err != nil {
		return 0, "", services.Wrap(services.ErrExternalService, "engine", "reload index", "list catalog records", err)
	}
	ix := record.NewIndex(records)
	e.state.swapIndex(ix)

	storeFingerprint := ix.ContentFingerprint()
	removed, err := e.state.caches.Invalidate(storeFingerprint)
	if err != nil {
		e.logger.Warn("cache invalidation failed", logging.Error(err))
	}
	e.logger.Info("catalog index reloaded",
		logging.Int("records", ix.Len()),
		logging.Int("cache_entries_dropped", removed),
		logging.String("store_fingerprint", storeFingerprint))
	return ix.Len(), storeFingerprint, nil
}

// Records returns the currently indexed catalog records.
func (e *Engine) Records(ctx context.Context) ([]record.Record, error) {
	if err := e.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return e.state.currentIndex().Records(), nil
}

// StoreFingerprint returns the content fingerprint of the current index.
func (e *Engine) StoreFingerprint(ctx context.Context) (string, error) {
	if err := e.ensureIndex(ctx); err != nil {
		return "", err
	}
	return e.state.currentIndex().ContentFingerprint(), nil
}

// ListDecisions returns all recorded decisions, newest first.
func (e *Engine) ListDecisions(ctx context.Context) ([]decision.Decision, error) {
	return e.state.log.List(ctx)
}

// FindDecision locates a decision by identity fingerprint or, failing that,
// by the most recently decided matching URL.
func (e *Engine) FindDecision(ctx context.Context, key string) (*decision.Decision, error) {
	if d, err := e.state.log.GetByFingerprint(ctx, key); err != nil || d != nil {
		return d, err
	}
	all, err := e.state.log.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Identity.URL == key {
			return &all[i], nil
		}
	}
	return nil, nil
}

// ClearDecisions empties the decision log.
func (e *Engine) ClearDecisions(ctx context.Context) (int64, error) {
	removed, err := e.state.log.Clear(ctx)
	if err == nil {
		e.logger.Info("decision log cleared", logging.Int64("removed", removed))
	}
	return removed, err
}

// CacheStats reports cache occupancy.
func (e *Engine) CacheStats() cache.Stats {
	return e.state.caches.Stats()
}

// ClearCaches empties both cache partitions.
func (e *Engine) ClearCaches() error {
	return e.state.caches.Clear()
}
