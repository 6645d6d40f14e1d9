// Package testdb opens a migrated in-memory SQLite store for tests.
package testdb

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"FinPulse/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

// New returns a fresh store backed by its own in-memory database.
func New(t testing.TB) *repository.GormStore {
	t.Helper()

	dsn := fmt.Sprintf("file:finpulse_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	store := repository.NewGormStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
