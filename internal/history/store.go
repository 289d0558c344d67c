package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/asrvd/repo-guardian/internal/engine"
)

// Store persists scan results to a local SQLite database. It is a
// report sink: the engine stays stateless and findings are recorded
// verbatim, exactly as produced at scan time.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Record is one persisted scan summary.
type Record struct {
	ID         string
	Repository string
	Succeeded  bool
	Message    string
	Findings   int
	ScannedAt  time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id TEXT PRIMARY KEY,
	repository TEXT NOT NULL,
	succeeded INTEGER NOT NULL,
	message TEXT NOT NULL,
	findings_count INTEGER NOT NULL,
	scanned_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS findings (
	scan_id TEXT NOT NULL REFERENCES scans(id),
	file TEXT NOT NULL,
	line INTEGER NOT NULL,
	rule_id TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL,
	remediation TEXT NOT NULL,
	matched_text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_findings_scan ON findings(scan_id);
`

// Open opens (creating if needed) the history database at path and
// bootstraps the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A second pooled connection would see a separate database when the
	// path is :memory:, and SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records one scan result and its findings. The insert is
// transactional: a scan row never appears without its findings.
func (s *Store) Save(ctx context.Context, result engine.ScanResult, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (id, repository, succeeded, message, findings_count, scanned_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, result.Repository, result.Succeeded, result.Message, len(result.Findings), at.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert scan record: %w", err)
	}

	for _, f := range result.Findings {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO findings (scan_id, file, line, rule_id, severity, description, remediation, matched_text)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, f.File, f.Line, f.RuleID, f.Severity.String(), f.Description, f.Remediation, f.MatchedText)
		if err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan record: %w", err)
	}

	s.logger.Debug("Scan recorded",
		zap.String("scan_id", id),
		zap.String("repository", result.Repository))
	return nil
}

// Recent returns the most recent scan records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, repository, succeeded, message, findings_count, scanned_at
		 FROM scans ORDER BY scanned_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Repository, &r.Succeeded, &r.Message, &r.Findings, &r.ScannedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
