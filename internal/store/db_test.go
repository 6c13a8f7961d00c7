package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMemory(t *testing.T) {
	db := testDB(t)
	if db.Path != ":memory:" {
		t.Errorf("Path = %q, want :memory:", db.Path)
	}
}

func TestOpenCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cadence.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	db := testDB(t)

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion = %d, want %d", v, len(migrations))
	}
}

func TestTablesExist(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"schema_versions", "items"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestItemsTypeConstraint(t *testing.T) {
	db := testDB(t)

	_, err := db.Exec(`
		INSERT INTO items (id, user_id, type, created_at, updated_at)
		VALUES ('a', 'u1', 'task', 1000, 1000)
	`)
	if err != nil {
		t.Fatalf("valid insert failed: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO items (id, user_id, type, created_at, updated_at)
		VALUES ('b', 'u1', 'reminder', 1000, 1000)
	`)
	if err == nil {
		t.Error("expected error for invalid type, got nil")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db := testDB(t)

	// Running migrate again should be a no-op
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion after re-migrate = %d, want %d", v, len(migrations))
	}
}
