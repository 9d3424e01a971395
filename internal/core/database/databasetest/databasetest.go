// Package databasetest opens a throwaway SQLite database with the full
// schema for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"lostfound-api/internal/core/database"
)

// Open returns a migrated database backed by a file in t.TempDir().
// A single connection keeps SQLite writers serialised.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
