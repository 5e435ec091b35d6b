// Package dedup records which chunk texts have already been indexed, so
// repeated runs over the same corpus skip them.
package dedup

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS indexed_chunks (
	hash      TEXT PRIMARY KEY,
	source_id TEXT NOT NULL,
	added_at  TEXT NOT NULL DEFAULT (datetime('now'))
)`

// Ledger is a content-hash ledger backed by SQLite.
type Ledger struct {
	db   *sql.DB
	path string
}

// Stats summarises the ledger.
type Stats struct {
	TotalIndexedChunks int            `json:"total_indexed_chunks"`
	BySource           map[string]int `json:"by_source"`
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return &Ledger{db: db, path: path}, nil
}

// Hash is the ledger key of a chunk text: hex sha256.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// IsIndexed reports whether text was marked before.
func (l *Ledger) IsIndexed(ctx context.Context, text string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, "SELECT 1 FROM indexed_chunks WHERE hash = ?", Hash(text)).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return true, nil
}

// MarkIndexed records text as indexed. Marking twice keeps the first record.
func (l *Ledger) MarkIndexed(ctx context.Context, text, sourceID string) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO indexed_chunks (hash, source_id) VALUES (?, ?)",
		Hash(text), sourceID)
	if err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}
	return nil
}

// Stats returns the total and per-source counts.
func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	st := Stats{BySource: map[string]int{}}
	rows, err := l.db.QueryContext(ctx, "SELECT source_id, COUNT(*) FROM indexed_chunks GROUP BY source_id")
	if err != nil {
		return st, fmt.Errorf("ledger stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return st, fmt.Errorf("ledger stats: %w", err)
		}
		st.BySource[source] = n
		st.TotalIndexedChunks += n
	}
	return st, rows.Err()
}

// Path returns the database file path.
func (l *Ledger) Path() string { return l.path }

func (l *Ledger) Close() error {
	return l.db.Close()
}
