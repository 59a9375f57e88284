// Package transcript persists conversation timelines in SQLite so a session
// can be listed and resumed later. Loading placeholders are never stored.
package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"netagent/internal/logging"
	"netagent/internal/timeline"
)

// ErrNotFound is returned by Load for an unknown session.
var ErrNotFound = errors.New("transcript not found")

const previewRunes = 40

// Summary describes a stored session.
type Summary struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Entries   int
	Preview   string // first user entry, truncated
}

// Store is a SQLite-backed transcript store.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	now    func() time.Time
}

// NewSessionID returns a fresh session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: path, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("Transcript store opened: %s", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		entry_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		confirmation_ref INTEGER,
		PRIMARY KEY (session_id, entry_id)
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the stored copy of session id with tl.
func (s *Store) Save(ctx context.Context, id string, tl timeline.Timeline) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid session id %q: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UnixMilli()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		id, now, now,
	); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (session_id, entry_id, role, text, confirmation_ref) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, e := range tl.Entries() {
		if e.Loading {
			continue
		}
		var ref sql.NullInt64
		if e.Confirmation != nil {
			ref = sql.NullInt64{Int64: int64(e.Confirmation.Ref), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, int64(e.ID), e.Role.String(), e.Text, ref); err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", e.ID, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logging.Get(logging.CategoryStore).Debug("Saved transcript %s: %d entries", id, stored)
	logging.Audit(logging.AuditEvent{
		EventType: logging.AuditTranscriptSave,
		Target:    id,
		Success:   true,
		Fields:    map[string]any{"entries": stored},
	})
	return nil
}

// Load returns the stored timeline for session id.
func (s *Store) Load(ctx context.Context, id string) (timeline.Timeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return timeline.Timeline{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return timeline.Timeline{}, fmt.Errorf("failed to query session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, role, text, confirmation_ref
		 FROM entries WHERE session_id = ? ORDER BY entry_id`, id)
	if err != nil {
		return timeline.Timeline{}, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []timeline.Entry
	for rows.Next() {
		var (
			entryID int64
			role    string
			text    string
			ref     sql.NullInt64
		)
		if err := rows.Scan(&entryID, &role, &text, &ref); err != nil {
			return timeline.Timeline{}, fmt.Errorf("failed to scan entry: %w", err)
		}
		r, err := timeline.ParseRole(role)
		if err != nil {
			return timeline.Timeline{}, fmt.Errorf("entry %d: %w", entryID, err)
		}
		e := timeline.Entry{ID: timeline.ID(entryID), Role: r, Text: text}
		if ref.Valid {
			e.Confirmation = &timeline.Confirmation{Ref: uint64(ref.Int64)}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return timeline.Timeline{}, fmt.Errorf("failed to read entries: %w", err)
	}

	logging.Get(logging.CategoryStore).Debug("Loaded transcript %s: %d entries", id, len(entries))
	return timeline.Restore(entries)
}

// List returns up to limit sessions, most recently updated first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM entries e WHERE e.session_id = s.id),
		        COALESCE((SELECT e.text FROM entries e
		                  WHERE e.session_id = s.id AND e.role = 'user'
		                  ORDER BY e.entry_id LIMIT 1), '')
		 FROM sessions s
		 ORDER BY s.updated_at DESC, s.rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum              Summary
			created, updated int64
		)
		if err := rows.Scan(&sum.ID, &created, &updated, &sum.Entries, &sum.Preview); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(created)
		sum.UpdatedAt = time.UnixMilli(updated)
		sum.Preview = truncate(sum.Preview, previewRunes)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes session id and its entries.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
