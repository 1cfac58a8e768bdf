package decision

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"modscout/internal/arbiter"
	"modscout/internal/config"
	"modscout/internal/identity"
	"modscout/internal/match"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases must be cleared after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Log persists decisions in SQLite, one row per identity fingerprint.
type Log struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the decision database under the configured
// state directory.
func Open(cfg *config.Config) (*Log, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.StateDir, "decisions.db"))
}

// OpenPath opens a decision database at an explicit path.
func OpenPath(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	log := &Log{db: db, path: dbPath}
	if err := log.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return log, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Path returns the database file location.
func (l *Log) Path() string {
	return l.path
}

func (l *Log) initSchema(ctx context.Context) error {
	var tableExists int
	err := l.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return l.createSchema(ctx)
	}

	var version int
	if err := l.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'modscout log clear' or delete the database)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (l *Log) createSchema(ctx context.Context) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Upsert records a decision, replacing any earlier decision for the same
// fingerprint. Later resolutions of the same identity overwrite older rows so
// the log always holds the latest answer per fingerprint.
func (l *Log) Upsert(ctx context.Context, d Decision) error {
	if err := d.Validate(); err != nil {
		return err
	}

	identityJSON, err := json.Marshal(d.Identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	arbitrationJSON, err := marshalVerdict(d.ArbitrationResult)
	if err != nil {
		return err
	}

	decidedAt := d.DecidedAt
	if decidedAt.IsZero() {
		decidedAt = time.Now().UTC()
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO decisions (
            fingerprint, url, identity_json, decided_at, candidate_count,
            ambiguity, arbitration_invoked, arbitration_json,
            outcome, outcome_source, reason, matched_record_id, store_fingerprint
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(fingerprint) DO UPDATE SET
            url = excluded.url,
            identity_json = excluded.identity_json,
            decided_at = excluded.decided_at,
            candidate_count = excluded.candidate_count,
            ambiguity = excluded.ambiguity,
            arbitration_invoked = excluded.arbitration_invoked,
            arbitration_json = excluded.arbitration_json,
            outcome = excluded.outcome,
            outcome_source = excluded.outcome_source,
            reason = excluded.reason,
            matched_record_id = excluded.matched_record_id,
            store_fingerprint = excluded.store_fingerprint`,
		d.Fingerprint,
		d.Identity.URL,
		string(identityJSON),
		decidedAt.UTC().Format(time.RFC3339Nano),
		d.CandidateCount,
		string(d.Ambiguity),
		boolToInt(d.ArbitrationInvoked),
		arbitrationJSON,
		string(d.Outcome),
		string(d.OutcomeSource),
		d.Reason,
		nullableString(d.MatchedRecordID),
		d.StoreFingerprint,
	)
	if err != nil {
		return fmt.Errorf("upsert decision: %w", err)
	}
	return nil
}

// GetByFingerprint returns the stored decision for a fingerprint, or nil when
// none exists.
func (l *Log) GetByFingerprint(ctx context.Context, fingerprint string) (*Decision, error) {
	row := l.db.QueryRowContext(ctx, selectColumns+" FROM decisions WHERE fingerprint = ?", fingerprint)
	d, err := scanDecision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all decisions ordered newest first.
func (l *Log) List(ctx context.Context) ([]Decision, error) {
	rows, err := l.db.QueryContext(ctx, selectColumns+" FROM decisions ORDER BY decided_at DESC, fingerprint")
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return decisions, nil
}

// ReplaceAll atomically swaps the entire log for the supplied decisions.
// Snapshot import uses this so a failed import never leaves a partial log.
func (l *Log) ReplaceAll(ctx context.Context, decisions []Decision) error {
	for _, d := range decisions {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	sorted := make([]Decision, len(decisions))
	copy(sorted, decisions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Fingerprint < sorted[j].Fingerprint })

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM decisions"); err != nil {
		return fmt.Errorf("clear decisions: %w", err)
	}
	for _, d := range sorted {
		identityJSON, err := json.Marshal(d.Identity)
		if err != nil {
			return fmt.Errorf("marshal identity: %w", err)
		}
		arbitrationJSON, err := marshalVerdict(d.ArbitrationResult)
		if err != nil {
			return err
		}
		decidedAt := d.DecidedAt
		if decidedAt.IsZero() {
			decidedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO decisions (
                fingerprint, url, identity_json, decided_at, candidate_count,
                ambiguity, arbitration_invoked, arbitration_json,
                outcome, outcome_source, reason, matched_record_id, store_fingerprint
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.Fingerprint,
			d.Identity.URL,
			string(identityJSON),
			decidedAt.UTC().Format(time.RFC3339Nano),
			d.CandidateCount,
			string(d.Ambiguity),
			boolToInt(d.ArbitrationInvoked),
			arbitrationJSON,
			string(d.Outcome),
			string(d.OutcomeSource),
			d.Reason,
			nullableString(d.MatchedRecordID),
			d.StoreFingerprint,
		); err != nil {
			return fmt.Errorf("insert decision %s: %w", d.Fingerprint, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Clear removes every decision from the log.
func (l *Log) Clear(ctx context.Context) (int64, error) {
	res, err := l.db.ExecContext(ctx, "DELETE FROM decisions")
	if err != nil {
		return 0, fmt.Errorf("clear decisions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

const selectColumns = `SELECT fingerprint, identity_json, decided_at, candidate_count,
    ambiguity, arbitration_invoked, arbitration_json,
    outcome, outcome_source, reason, matched_record_id, store_fingerprint`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (Decision, error) {
	var (
		d                  Decision
		identityJSON       string
		decidedAt          string
		ambiguity          string
		arbitrationInvoked int
		arbitrationJSON    sql.NullString
		outcome            string
		outcomeSource      string
		matchedRecordID    sql.NullString
	)
	err := row.Scan(
		&d.Fingerprint,
		&identityJSON,
		&decidedAt,
		&d.CandidateCount,
		&ambiguity,
		&arbitrationInvoked,
		&arbitrationJSON,
		&outcome,
		&outcomeSource,
		&d.Reason,
		&matchedRecordID,
		&d.StoreFingerprint,
	)
	if err != nil {
		return Decision{}, err
	}

	var id identity.Identity
	if err := json.Unmarshal([]byte(identityJSON), &id); err != nil {
		return Decision{}, fmt.Errorf("unmarshal identity for %s: %w", d.Fingerprint, err)
	}
	d.Identity = id

	parsed, err := time.Parse(time.RFC3339Nano, decidedAt)
	if err != nil {
		return Decision{}, fmt.Errorf("parse decided_at for %s: %w", d.Fingerprint, err)
	}
	d.DecidedAt = parsed

	d.Ambiguity = match.Ambiguity(ambiguity)
	d.ArbitrationInvoked = arbitrationInvoked != 0
	if arbitrationJSON.Valid && arbitrationJSON.String != "" {
		var verdict arbiter.Verdict
		if err := json.Unmarshal([]byte(arbitrationJSON.String), &verdict); err != nil {
			return Decision{}, fmt.Errorf("unmarshal arbitration for %s: %w", d.Fingerprint, err)
		}
		d.ArbitrationResult = &verdict
	}
	d.Outcome = Outcome(outcome)
	d.OutcomeSource = Source(outcomeSource)
	if matchedRecordID.Valid {
		d.MatchedRecordID = matchedRecordID.String
	}
	return d, nil
}

func marshalVerdict(verdict *arbiter.Verdict) (any, error) {
	if verdict == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(verdict)
	if err != nil {
		return nil, fmt.Errorf("marshal arbitration verdict: %w", err)
	}
	return string(encoded), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
