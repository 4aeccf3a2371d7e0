package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("not found")

// Storage is the sqlite-backed implementation of scheduler.Store, plus the
// demo service's user/auth tables. One Storage wraps one *sql.DB; callers
// share it across the scheduler and the HTTP handlers.
type Storage struct {
	db *sql.DB
}

// NewStorage opens (and does not yet migrate) the sqlite database at path.
func NewStorage(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
