// Package journal keeps a SQLite history of every image the labeler moved.
// The history is informational: labeling never depends on it.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"imglabel/internal/errors"
	"imglabel/internal/session"

	_ "modernc.org/sqlite"
)

// Fixed-width so moved_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded move.
type Entry struct {
	ID          int64
	SessionID   string
	Directory   string
	Filename    string
	Label       string
	Source      string
	Destination string
	DryRun      bool
	MovedAt     time.Time
}

// Query filters List results. A zero Limit returns every entry.
type Query struct {
	Directory string
	SessionID string
	Limit     int
}

// Store manages the journal database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewFileError("create journal directory", filepath.Dir(path), errors.JournalFailed, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewFileError("open journal", path, errors.JournalFailed, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, errors.NewFileError(fmt.Sprintf("apply pragma %q", pragma), path, errors.JournalFailed, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, errors.NewFileError("migrate journal", path, errors.JournalFailed, err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record inserts e and returns its id. A zero MovedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.MovedAt.IsZero() {
		e.MovedAt = time.Now()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO moves (
            session_id, directory, filename, label, source, destination, dry_run, moved_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID,
		e.Directory,
		e.Filename,
		e.Label,
		e.Source,
		e.Destination,
		boolToInt(e.DryRun),
		e.MovedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, errors.NewKind(errors.JournalFailed, "insert move", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.NewKind(errors.JournalFailed, "last insert id", err)
	}
	return id, nil
}

// RecordMove stores a session move.
func (s *Store) RecordMove(m session.Move) error {
	_, err := s.Record(context.Background(), Entry{
		SessionID:   m.SessionID,
		Directory:   m.Directory,
		Filename:    m.Filename,
		Label:       m.Label,
		Source:      m.Source,
		Destination: m.Destination,
		DryRun:      m.DryRun,
	})
	return err
}

// List returns entries matching q, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Entry, error) {
	query := `SELECT id, session_id, directory, filename, label, source, destination, dry_run, moved_at
        FROM moves WHERE 1=1`
	var args []any
	if q.Directory != "" {
		query += " AND directory = ?"
		args = append(args, q.Directory)
	}
	if q.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, q.SessionID)
	}
	query += " ORDER BY moved_at DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewKind(errors.JournalFailed, "list moves", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			dryRun  int
			movedAt string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Directory, &e.Filename, &e.Label,
			&e.Source, &e.Destination, &dryRun, &movedAt); err != nil {
			return nil, errors.NewKind(errors.JournalFailed, "scan move", err)
		}
		e.DryRun = dryRun != 0
		if t, err := time.Parse(timeLayout, movedAt); err == nil {
			e.MovedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewKind(errors.JournalFailed, "iterate moves", err)
	}
	return entries, nil
}

// CountByLabel returns how many non-simulated moves each label received in dir.
func (s *Store) CountByLabel(ctx context.Context, dir string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, COUNT(1) FROM moves WHERE directory = ? AND dry_run = 0 GROUP BY label`, dir)
	if err != nil {
		return nil, errors.NewKind(errors.JournalFailed, "count moves", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return nil, errors.NewKind(errors.JournalFailed, "scan count", err)
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ session.Recorder = (*Store)(nil)
