// Package cerb is a read-only view of a Cerberus 5 helpdesk database. The
// migration never writes to it.
package cerb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned by point lookups when no row matches.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// NewStore opens the Cerb5 MySQL database with the given DSN. The connection
// is verified lazily; use ConnectionTest to check it eagerly.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cerb database: %w", err)
	}

	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(2)

	return &Store{db: db}, nil
}

func (s *Store) ConnectionTest(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging cerb database: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
