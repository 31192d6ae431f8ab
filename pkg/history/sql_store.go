package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLStore is the sqlite-backed ledger. Appends ride on sqlite's own write
// transaction, so no external lock file is needed.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens (creating if necessary) the sqlite ledger at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite %s: %w", path, err)
	}
	s := &SQLStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an existing database handle.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS history_entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		score INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		pass_count INTEGER NOT NULL,
		fail_count INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		commit_hash TEXT NOT NULL DEFAULT ''
	);`
	if _, err := s.db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Append inserts the entry. Insertion order is the ledger order.
func (s *SQLStore) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history_entries (score, verdict, pass_count, fail_count, timestamp, commit_hash)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Score, entry.Verdict, entry.Counts.Pass, entry.Counts.Fail,
		entry.Timestamp, entry.CommitHash,
	)
	if err != nil {
		return fmt.Errorf("history: insert entry: %w", err)
	}
	return nil
}

// Load returns all entries oldest-first, matching the file store's order.
func (s *SQLStore) Load(ctx context.Context) (History, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT score, verdict, pass_count, fail_count, timestamp, commit_hash
		FROM history_entries ORDER BY seq ASC`)
	if err != nil {
		return History{}, fmt.Errorf("history: query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var h History
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Score, &e.Verdict, &e.Counts.Pass, &e.Counts.Fail,
			&e.Timestamp, &e.CommitHash); err != nil {
			return History{}, fmt.Errorf("history: scan entry: %w", err)
		}
		h.Entries = append(h.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return History{}, fmt.Errorf("history: iterate entries: %w", err)
	}
	return h, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
