package database

import (
	"context"
	"path/filepath"
	"testing"
)

// setupTestDB creates a test database in a temporary directory.
func setupTestDB(t *testing.T) (*Database, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), Options{Driver: DriverSQLite, Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db, dbPath
}
