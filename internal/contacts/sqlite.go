package contacts

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
	   id        INTEGER PRIMARY KEY AUTOINCREMENT,
	   name      TEXT NOT NULL,
	   email     TEXT NOT NULL,
	   type      TEXT NOT NULL,
	   status    TEXT NOT NULL,
	   last_sent TEXT NOT NULL DEFAULT ''
	 )`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts (lower(status))`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts (lower(name))`,
}

// SQLiteStore keeps the table in a SQLite database. Rows keep insertion order.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (and creates when needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Lock(_ context.Context) (func(), error) {
	s.mu.Lock()
	return s.mu.Unlock, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, email, type, status, last_sent FROM contacts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	list := make([]Contact, 0)
	for rows.Next() {
		var c Contact
		var category, status string
		if err := rows.Scan(&c.Name, &c.Email, &category, &status, &c.LastSent); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		c.Category = Category(category)
		c.Status = Status(status)
		list = append(list, c)
	}

	return list, rows.Err()
}

// Save replaces every row inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, list []Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO contacts (name, email, type, status, last_sent) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range list {
		if _, err := stmt.ExecContext(ctx, c.Name, c.Email, string(c.Category), string(c.Status), c.LastSent); err != nil {
			return fmt.Errorf("insert contact %q: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
