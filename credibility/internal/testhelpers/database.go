// Package testhelpers holds fixtures shared by the credibility tests.
package testhelpers

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/credibility/internal/database"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// NewSQLiteDB returns a migrated in-memory SQLite database closed at the
// end of the test.
func NewSQLiteDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.Connect(context.Background(), database.Config{
		Driver: database.DriverSQLite,
		Path:   ":memory:",
	})
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, infralogger.NewNop()); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
