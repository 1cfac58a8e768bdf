package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"modscout/internal/config"
	"modscout/internal/decision"
	"modscout/internal/logging"
)

// Partition names one of the two disjoint cache tiers.
type Partition string

const (
	// PartitionMatch holds FOUND decisions.
	PartitionMatch Partition = "match"
	// PartitionAbsent holds NOT_FOUND decisions. This partition never leaves
	// the local state directory: snapshots exclude it.
	PartitionAbsent Partition = "absent"
)

// Entry is one cached decision keyed by identity fingerprint.
type Entry struct {
	Fingerprint string            `json:"fingerprint"`
	Decision    decision.Decision `json:"decision"`
	CachedAt    time.Time         `json:"cached_at"`
}

// Stats summarizes cache occupancy.
type Stats struct {
	MatchEntries  int `json:"match_entries"`
	AbsentEntries int `json:"absent_entries"`
}

// Store provides thread-safe access to the match and absent caches. Each
// partition persists to its own JSON file so snapshot export can carry the
// match cache without ever touching absent entries.
type Store struct {
	matchPath  string
	absentPath string
	logger     *slog.Logger
	mu         sync.RWMutex
	match      map[string]Entry
	absent     map[string]Entry
}

// NewStore creates a cache store under the configured state directory. If
// both paths are empty the store is non-functional and all operations become
// no-ops.
func NewStore(cfg *config.Config, logger *slog.Logger) *Store {
	return NewStoreAt(
		filepath.Join(cfg.Paths.StateDir, "match_cache.json"),
		filepath.Join(cfg.Paths.StateDir, "absent_cache.json"),
		logger,
	)
}

// NewStoreAt creates a cache store with explicit partition file paths. The
// files are created lazily on first Put.
func NewStoreAt(matchPath, absentPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "cache")

	s := &Store{
		matchPath:  matchPath,
		absentPath: absentPath,
		logger:     logger,
		match:      make(map[string]Entry),
		absent:     make(map[string]Entry),
	}
	if s.disabled() {
		return s
	}

	if err := loadPartition(matchPath, s.match); err != nil {
		logger.Warn("failed to load match cache",
			logging.String("path", matchPath),
			logging.Error(err))
	}
	if err := loadPartition(absentPath, s.absent); err != nil {
		logger.Warn("failed to load absent cache",
			logging.String("path", absentPath),
			logging.Error(err))
	}
	return s
}

func (s *Store) disabled() bool {
	return s.matchPath == "" && s.absentPath == ""
}

// Put caches a decision under its fingerprint. The partition follows the
// outcome: FOUND enters the match cache, NOT_FOUND the absent cache. The
// fingerprint is removed from the opposite partition first so the two tiers
// stay disjoint.
func (s *Store) Put(d decision.Decision) error {
	fingerprint := strings.TrimSpace(d.Fingerprint)
	if fingerprint == "" {
		return errors.New("fingerprint cannot be empty")
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if s.disabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{Fingerprint: fingerprint, Decision: d, CachedAt: time.Now().UTC()}
	if d.Outcome == decision.OutcomeFound {
		delete(s.absent, fingerprint)
		s.match[fingerprint] = entry
	} else {
		delete(s.match, fingerprint)
		s.absent[fingerprint] = entry
	}
	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	s.logger.Debug("cached decision",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.String(logging.FieldOutcome, string(d.Outcome)))
	return nil
}

// Lookup returns the cached entry for a fingerprint, if any, and which
// partition held it. Staleness against the current catalog is the caller's
// concern: compare Entry.Decision.StoreFingerprint before trusting a hit.
func (s *Store) Lookup(fingerprint string) (Entry, Partition, bool) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" || s.disabled() {
		return Entry{}, "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, ok := s.match[fingerprint]; ok {
		return entry, PartitionMatch, true
	}
	if entry, ok := s.absent[fingerprint]; ok {
		return entry, PartitionAbsent, true
	}
	return Entry{}, "", false
}

// Invalidate removes every entry, in both partitions, whose decision was
// recorded against a catalog state other than storeFingerprint. It returns
// the number of entries removed.
func (s *Store) Invalidate(storeFingerprint string) (int, error) {
	if s.disabled() {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, partition := range []map[string]Entry{s.match, s.absent} {
		for fingerprint, entry := range partition {
			if entry.Decision.StoreFingerprint != storeFingerprint {
				delete(partition, fingerprint)
				removed++
			}
		}
	}
	if removed > 0 {
		if err := s.saveLocked(); err != nil {
			return removed, fmt.Errorf("persist cache: %w", err)
		}
		s.logger.Debug("invalidated stale cache entries",
			logging.Int("removed", removed),
			logging.String("store_fingerprint", storeFingerprint))
	}
	return removed, nil
}

// Clear removes all entries from both partitions.
func (s *Store) Clear() error {
	if s.disabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.match = make(map[string]Entry)
	s.absent = make(map[string]Entry)
	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	s.logger.Debug("cleared caches")
	return nil
}

// Stats reports current occupancy of both partitions.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{MatchEntries: len(s.match), AbsentEntries: len(s.absent)}
}

// MatchEntries returns the match-partition entries sorted by fingerprint.
// Snapshot export uses this; the absent partition is deliberately not
// exposed the same way.
func (s *Store) MatchEntries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedEntries(s.match)
}

// ReplaceMatch atomically swaps the whole match partition for the supplied
// entries. The absent partition is left alone. Snapshot import uses this.
func (s *Store) ReplaceMatch(entries []Entry) error {
	next := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		fingerprint := strings.TrimSpace(entry.Fingerprint)
		if fingerprint == "" {
			return errors.New("fingerprint cannot be empty")
		}
		if err := entry.Decision.Validate(); err != nil {
			return err
		}
		entry.Fingerprint = fingerprint
		next[fingerprint] = entry
	}
	if s.disabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.match = next
	// Anything imported into the match tier must not linger as absent.
	for fingerprint := range next {
		delete(s.absent, fingerprint)
	}
	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

func loadPartition(path string, into map[string]Entry) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	for _, entry := range entries {
		if strings.TrimSpace(entry.Fingerprint) != "" {
			into[entry.Fingerprint] = entry
		}
	}
	return nil
}

func (s *Store) saveLocked() error {
	if err := savePartition(s.matchPath, s.match); err != nil {
		return err
	}
	return savePartition(s.absentPath, s.absent)
}

func savePartition(path string, entries map[string]Entry) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(sortedEntries(entries), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	return writeFileAtomic(path, data)
}

func sortedEntries(entries map[string]Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fingerprint < out[j].Fingerprint })
	return out
}

// writeFileAtomic writes data to path via a temp file and rename so readers
// never observe a partially written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
