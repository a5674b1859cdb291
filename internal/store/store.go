// Package store provides SQLite persistence for facts and the completion
// request log. It owns persisted identity: records have no ID until Insert
// assigns one.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the database handle and hands out repositories.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path, applies
// pragmas, and migrates the schema. Use "file::memory:?cache=shared" for
// tests.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && !isMemoryDSN(path) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&FactRecord{}, &RequestLog{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DefaultPath returns the standard database location,
// $XDG_DATA_HOME/factdeck/factdeck.db (falling back to ~/.local/share).
func DefaultPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "factdeck", "factdeck.db"), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB exposes the raw handle for tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Facts returns the fact repository.
func (s *Store) Facts() FactRepo {
	return &gormFactRepo{db: s.db}
}

// RequestLogs returns the completion request log repository.
func (s *Store) RequestLogs() RequestLogRepo {
	return &gormRequestLogRepo{db: s.db}
}

func isMemoryDSN(path string) bool {
	return path == ":memory:" || len(path) >= 5 && path[:5] == "file:"
}
