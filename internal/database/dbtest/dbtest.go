// Package dbtest provides throwaway databases for tests.
package dbtest

import (
	"testing"

	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-web/internal/config"
	"github.com/Tomlord1122/todo-web/internal/database"
)

// New opens a migrated in-memory sqlite database that is closed when t ends.
func New(t testing.TB) database.Service {
	t.Helper()

	db, err := database.New(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
		LogLevel:   "silent",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db.GetDB()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
