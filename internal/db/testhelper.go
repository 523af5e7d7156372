package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

// TestDatabaseURLEnv names the variable pointing tests at a disposable
// PostgreSQL database.
const TestDatabaseURLEnv = "SELLERCTL_TEST_DATABASE_URL"

// OpenTestJournal opens a migrated journal in t.TempDir() and registers
// cleanup.
func OpenTestJournal(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenJournal(context.Background(), filepath.Join(t.TempDir(), "journal.sqlite"))
	if err != nil {
		t.Fatalf("open test journal: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// OpenTestPostgres connects to SELLERCTL_TEST_DATABASE_URL, resets the
// bootstrap schema and registers cleanup. Tests are skipped when the
// variable is unset.
func OpenTestPostgres(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv(TestDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set, skipping postgres test", TestDatabaseURLEnv)
	}
	ctx := context.Background()
	db, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("open test postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := ResetMigrations(ctx, db, BootstrapMigrations); err != nil {
		t.Fatalf("reset migrations: %v", err)
	}
	return db
}
