package test_utils

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/finance-dashboard/dashboard/internal/database"
)

// SetupTestDB creates a SQLite database in a temporary directory with all
// migrations applied. It is closed when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSqlite(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}
