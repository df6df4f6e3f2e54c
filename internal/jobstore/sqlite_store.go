package jobstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const jobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	identity     TEXT PRIMARY KEY,
	next_run_at  INTEGER NOT NULL,
	is_enabled   INTEGER NOT NULL,
	start_at     TEXT,
	end_at       TEXT,
	log          TEXT NOT NULL DEFAULT '',
	err          TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore persists job records to a single "jobs" table keyed by
// identity digest, using separate reader/writer connection pools (WAL mode)
// so a monitor read never queues behind a dispatch-loop-triggered save —
// the same split the teacher's db.DBPair uses for its routines/jobs tables.
type SQLiteStore struct {
	reader *sql.DB
	writer *sql.DB
}

// NewSQLiteStore opens (and, if needed, creates) the SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}

	writerDSN := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000&cache=shared&mode=rwc", path)
	writer, err := sql.Open("sqlite3", writerDSN)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)
	writer.SetConnMaxLifetime(time.Hour)

	if _, err := writer.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		writer.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	if _, err := writer.Exec(jobsSchema); err != nil {
		writer.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	readerDSN := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000&cache=shared&mode=ro", path)
	reader, err := sql.Open("sqlite3", readerDSN)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)
	reader.SetConnMaxLifetime(time.Hour)

	return &SQLiteStore{reader: reader, writer: writer}, nil
}

// Close closes both connection pools.
func (s *SQLiteStore) Close() error {
	werr := s.writer.Close()
	rerr := s.reader.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Save implements Store via an upsert.
func (s *SQLiteStore) Save(rec Record) error {
	_, err := s.writer.Exec(`
		INSERT INTO jobs (identity, next_run_at, is_enabled, start_at, end_at, log, err)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			next_run_at = excluded.next_run_at,
			is_enabled  = excluded.is_enabled,
			start_at    = excluded.start_at,
			end_at      = excluded.end_at,
			log         = excluded.log,
			err         = excluded.err
	`, rec.Identity, rec.NextRunAt, rec.IsEnabled, formatTime(rec.Start), formatTime(rec.End), rec.Log, rec.Err)
	if err != nil {
		return fmt.Errorf("saving job record: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(identity string) error {
	_, err := s.writer.Exec(`DELETE FROM jobs WHERE identity = ?`, identity)
	if err != nil {
		return fmt.Errorf("deleting job record: %w", err)
	}
	return nil
}

// LoadAll implements Store. A row that fails to scan is skipped so one
// corrupt row cannot prevent the others from restoring.
func (s *SQLiteStore) LoadAll() ([]Record, error) {
	rows, err := s.reader.Query(`SELECT identity, next_run_at, is_enabled, start_at, end_at, log, err FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("loading job records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var start, end sql.NullString
		if err := rows.Scan(&rec.Identity, &rec.NextRunAt, &rec.IsEnabled, &start, &end, &rec.Log, &rec.Err); err != nil {
			continue
		}
		rec.Start = parseTime(start)
		rec.End = parseTime(end)
		records = append(records, rec)
	}
	return records, nil
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
