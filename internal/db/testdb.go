package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns a migrated private in-memory board that is closed when
// the test ends.
func NewTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	database, err := Open(Memory)
	if err != nil {
		tb.Fatalf("NewTestDB: %v", err)
	}
	tb.Cleanup(func() { database.Close() })

	if err := Migrate(database); err != nil {
		tb.Fatalf("NewTestDB: %v", err)
	}
	return database
}
