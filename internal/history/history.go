// Package history implements the clipboard-history store: an ordered,
// capacity-bounded collection of entries persisted in SQLite, with per-entry
// pin and sensitivity metadata.
//
// The store is the single owner of the entries table. Mutations are
// serialized behind a write lock; reads share a read lock so listings never
// observe a half-applied mutation. An insertion and its retention pass run
// inside one transaction, so the unpinned ceiling holds at every commit
// point.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const (
	// DefaultMaxUnpinned is the retention ceiling applied when the caller
	// does not configure one.
	DefaultMaxUnpinned = 100

	// DefaultAlias is the display label given to an entry that is marked
	// sensitive without an explicit alias.
	DefaultAlias = "*** Sensitive Data ***"
)

// Entry is one clipboard-history record.
type Entry struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Pinned    bool      `json:"pinned"`
	Sensitive bool      `json:"sensitive"`
	Alias     string    `json:"alias,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Display returns the text a listing should show for the entry: the alias
// for sensitive entries, the raw content otherwise.
func (e Entry) Display() string {
	if e.Sensitive {
		return e.Alias
	}
	return e.Content
}

// Store is the SQLite-backed history store.
type Store struct {
	mu          sync.RWMutex
	db          *sql.DB
	maxUnpinned int
}

// Open creates or opens the history database at path. maxUnpinned is the
// retention ceiling for non-pinned entries; values < 1 fall back to
// DefaultMaxUnpinned.
//
// SQLite is configured with WAL mode, a 5-second busy timeout, and a
// single-connection pool (SQLite allows one writer at a time; a pool of one
// avoids SQLITE_BUSY under concurrent commands).
func Open(path string, maxUnpinned int) (*Store, error) {
	if maxUnpinned < 1 {
		maxUnpinned = DefaultMaxUnpinned
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, maxUnpinned: maxUnpinned}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MaxUnpinned returns the configured retention ceiling.
func (s *Store) MaxUnpinned() int { return s.maxUnpinned }

// Insert stores content as a new unpinned, non-sensitive entry and runs a
// retention pass, both in one transaction. It returns the new entry id and
// created=true, or created=false with no side effect when content is
// rejected: empty/whitespace-only content, or content equal to the most
// recent entry (duplicate rejection — only the latest entry is compared).
func (s *Store) Insert(ctx context.Context, content string) (int64, bool, error) {
	if strings.TrimSpace(content) == "" {
		return 0, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("insert: %w", err)
	}
	defer tx.Rollback()

	var last string
	err = tx.QueryRowContext(ctx, `
		SELECT content FROM entries
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&last)
	switch {
	case err == sql.ErrNoRows:
		// empty store, nothing to dedupe against
	case err != nil:
		return 0, false, fmt.Errorf("insert: check duplicate: %w", err)
	case last == content:
		return 0, false, nil
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO entries (content, is_pinned, is_sensitive, alias, created_at)
		VALUES (?, 0, 0, NULL, ?)
	`, content, time.Now())
	if err != nil {
		return 0, false, fmt.Errorf("insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("insert: %w", err)
	}

	if err := s.retainTx(ctx, tx); err != nil {
		return 0, false, fmt.Errorf("insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("insert: %w", err)
	}
	return id, true, nil
}

// List returns every entry, pinned entries first, newest first within each
// group.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, is_pinned, is_sensitive, alias, created_at
		FROM entries
		ORDER BY is_pinned DESC, created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			alias sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Content, &e.Pinned, &e.Sensitive, &alias, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		e.Alias = alias.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TogglePin flips the pinned flag of the entry with the given id. It reports
// whether a matching entry existed. Pinning and unpinning never trigger a
// retention pass; eviction only follows insertion.
func (s *Store) TogglePin(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE entries SET is_pinned = NOT is_pinned WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("toggle pin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle pin: %w", err)
	}
	return n > 0, nil
}

// ToggleSensitive flips the sensitivity of the entry with the given id.
// The two outcomes are distinct:
//
//   - entry was not sensitive: it becomes sensitive and its alias is set to
//     alias, or DefaultAlias when alias is empty;
//   - entry was sensitive: sensitivity is cleared and the alias removed —
//     alias is ignored in this case.
//
// Reports whether a matching entry existed.
func (s *Store) ToggleSensitive(ctx context.Context, id int64, alias string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("toggle sensitive: %w", err)
	}
	defer tx.Rollback()

	var sensitive bool
	err = tx.QueryRowContext(ctx, `SELECT is_sensitive FROM entries WHERE id = ?`, id).Scan(&sensitive)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("toggle sensitive: %w", err)
	}

	if sensitive {
		_, err = tx.ExecContext(ctx, `
			UPDATE entries SET is_sensitive = 0, alias = NULL WHERE id = ?
		`, id)
	} else {
		if alias == "" {
			alias = DefaultAlias
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE entries SET is_sensitive = 1, alias = ? WHERE id = ?
		`, alias, id)
	}
	if err != nil {
		return false, fmt.Errorf("toggle sensitive: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("toggle sensitive: %w", err)
	}
	return true, nil
}

// UpdateAlias replaces the alias of a sensitive entry. It reports false,
// without touching state, when the entry does not exist or is not currently
// sensitive.
func (s *Store) UpdateAlias(ctx context.Context, id int64, alias string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE entries SET alias = ? WHERE id = ? AND is_sensitive = 1
	`, alias, id)
	if err != nil {
		return false, fmt.Errorf("update alias: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update alias: %w", err)
	}
	return n > 0, nil
}

// Delete removes one entry by id and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	return n > 0, nil
}

// ClearUnpinned deletes every non-pinned entry and returns the number
// removed. Pinned entries are untouched.
func (s *Store) ClearUnpinned(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE is_pinned = 0`)
	if err != nil {
		return 0, fmt.Errorf("clear unpinned: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear unpinned: %w", err)
	}
	return n, nil
}

// Content returns the raw content of one entry, for pasting. The second
// return reports whether the entry exists.
func (s *Store) Content(ctx context.Context, id int64) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM entries WHERE id = ?`, id).Scan(&content)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get content: %w", err)
	}
	return content, true, nil
}

// Counts returns the total and pinned entry counts, for status reporting.
func (s *Store) Counts(ctx context.Context) (total, pinned int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(is_pinned), 0) FROM entries
	`).Scan(&total, &pinned)
	if err != nil {
		return 0, 0, fmt.Errorf("counts: %w", err)
	}
	return total, pinned, nil
}

// retainTx runs one retention pass inside tx: unpinned entries beyond the
// ceiling are deleted, oldest first. Pinned entries are never candidates.
func (s *Store) retainTx(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, created_at FROM entries WHERE is_pinned = 0
	`)
	if err != nil {
		return fmt.Errorf("retention: %w", err)
	}
	var unpinned []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.ID, &c.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("retention: scan: %w", err)
		}
		unpinned = append(unpinned, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("retention: %w", err)
	}

	for _, id := range evict(unpinned, s.maxUnpinned) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
			return fmt.Errorf("retention: delete %d: %w", id, err)
		}
	}
	return nil
}
