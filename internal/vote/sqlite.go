package vote

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one row per faction in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("vote: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("vote: opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS votes (
		faction TEXT PRIMARY KEY,
		count   INTEGER NOT NULL CHECK (count >= 0)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("vote: initializing schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load implements Store. An empty table wraps ErrNoTally.
func (s *SQLiteStore) Load(ctx context.Context) (Tally, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT faction, count FROM votes`)
	if err != nil {
		return Tally{}, fmt.Errorf("%w: %v", ErrNoTally, err)
	}
	defer rows.Close()

	var t Tally
	found := 0
	for rows.Next() {
		var faction string
		var count int
		if err := rows.Scan(&faction, &count); err != nil {
			return Tally{}, fmt.Errorf("%w: %v", ErrNoTally, err)
		}
		switch Faction(faction) {
		case Kinoko:
			t.Kinoko = count
		case Takenoko:
			t.Takenoko = count
		default:
			continue
		}
		found++
	}
	if err := rows.Err(); err != nil {
		return Tally{}, fmt.Errorf("%w: %v", ErrNoTally, err)
	}
	if found == 0 {
		return Tally{}, ErrNoTally
	}
	return t, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, t Tally) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vote: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO votes (faction, count) VALUES (?, ?)
		ON CONFLICT(faction) DO UPDATE SET count = excluded.count`
	for _, f := range []Faction{Kinoko, Takenoko} {
		if _, err := tx.ExecContext(ctx, upsert, string(f), t.Count(f)); err != nil {
			return fmt.Errorf("vote: saving %s: %w", f, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("vote: %w", err)
	}
	return nil
}
