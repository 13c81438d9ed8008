// Package storage persists metric samples in a DuckDB database.
//
// The store owns one append-only table per metric family, each with a
// sequence-assigned id and an indexed timestamp column. Writes happen on a
// single goroutine (the tracker loop); each batch insert runs in its own
// transaction so a mid-batch failure leaves no partial rows. Reads are
// served to the report and export tools only.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/xtxerr/utiltrack/internal/errors"
	"github.com/xtxerr/utiltrack/internal/logging"
)

// Store provides database operations for metric samples.
//
// Store methods are not safe for concurrent writers; the daemon has exactly
// one writer for the store's entire lifetime. Close is safe to call more
// than once.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists. The parent directory is created when missing. An
// unwritable path is a fatal error for the caller.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewStorage("create database directory", err)
		}
	}

	s, err := open(path, path, logger)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSchema(); err != nil {
		s.db.Close()
		return nil, err
	}

	s.log.Info("database opened", "path", path)
	return s, nil
}

// OpenReadOnly opens an existing database without write access and without
// running any DDL. The query and export tools use this so they never
// contend for DuckDB's writer lock.
func OpenReadOnly(path string, logger *slog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewStorage("database not found", err)
	}

	s, err := open(path+"?access_mode=read_only", path, logger)
	if err != nil {
		return nil, err
	}

	s.log.Debug("database opened read-only", "path", path)
	return s, nil
}

func open(dsn, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.NewStorage("open database", err)
	}

	// Single writer; cap the pool at one connection.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewStorage("ping database", err)
	}

	return &Store{
		db:   db,
		path: path,
		log:  logging.Component(logger, "storage"),
	}, nil
}

// Close closes the store. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.log.Info("database closed", "path", s.path)
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// transaction executes fn within a transaction, rolling back on error.
// Writes after Close fail with ErrStorageClosed.
func (s *Store) transaction(fn func(*sql.Tx) error) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.ErrStorageClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.NewStorage("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.NewStorage("rollback",
				fmt.Errorf("%v (original error: %w)", rbErr, err))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorage("commit", err)
	}
	return nil
}
