// Package dbtest opens throwaway migrated SQLite databases for repository tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/celulas/celulas-api/internal/pkg/database"
)

// Open returns a migrated database living in the test's temp dir.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Exec runs a fixture statement written with ? placeholders.
func Exec(t *testing.T, db *sqlx.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(db.Rebind(query), args...); err != nil {
		t.Fatalf("fixture %q: %v", query, err)
	}
}

// SeedIgreja inserts a church and returns its id.
func SeedIgreja(t *testing.T, db *sqlx.DB, nome string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	Exec(t, db, `INSERT INTO igrejas (id, nome, created_at) VALUES (?, ?, ?)`, id, nome, database.Now())
	return id
}

// SeedUser inserts a user with the given role; external_id is "ext_" + id.
func SeedUser(t *testing.T, db *sqlx.DB, igrejaID uuid.UUID, role string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := database.Now()
	igreja := uuid.NullUUID{UUID: igrejaID, Valid: igrejaID != uuid.Nil}
	Exec(t, db, `INSERT INTO users (id, external_id, email, name, role, igreja_id, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, "ext_"+id.String(), id.String()[:8]+"@igreja.test", role+" "+id.String()[:4], role, igreja, false, now, now)
	return id
}

// SeedArea inserts a supervision area; supervisorID may be uuid.Nil.
func SeedArea(t *testing.T, db *sqlx.DB, igrejaID, supervisorID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	supervisor := uuid.NullUUID{UUID: supervisorID, Valid: supervisorID != uuid.Nil}
	Exec(t, db, `INSERT INTO areas_supervisao (id, igreja_id, nome, supervisor_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, igrejaID, "Area "+id.String()[:4], supervisor, database.Now())
	return id
}
