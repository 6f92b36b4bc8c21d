// Package storagetest opens throwaway sqlite databases for tests.
package storagetest

import (
	"context"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"path/filepath"
	"testing"
)

func SetupDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}
