package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	tables := []string{"runs", "run_deletions", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckSchema_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := CheckSchema(db); !errors.Is(err, ErrNoSchema) {
		t.Fatalf("CheckSchema() error = %v, want ErrNoSchema", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}
	if err := CheckSchema(db); err != nil {
		t.Errorf("CheckSchema() after double migration returned error: %v", err)
	}
}

func TestCheckSchema_VersionMismatch(t *testing.T) {
	tests := []struct {
		name    string
		update  string
		wantErr error
	}{
		{"behind", "UPDATE schema_migrations SET version = 1", ErrSchemaBehind},
		{"ahead", "UPDATE schema_migrations SET version = 99", ErrSchemaAhead},
		{"dirty", "UPDATE schema_migrations SET dirty = 1", ErrSchemaDirty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			if err := MigrateUp(db); err != nil {
				t.Fatalf("MigrateUp() failed: %v", err)
			}
			if _, err := db.Exec(tt.update); err != nil {
				t.Fatalf("updating schema_migrations: %v", err)
			}

			if err := CheckSchema(db); !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckSchema() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	t.Run("fresh journal is migrated", func(t *testing.T) {
		db := openTestDB(t)
		if err := Prepare(db); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if err := CheckSchema(db); err != nil {
			t.Errorf("CheckSchema() after Prepare() = %v", err)
		}
	})

	t.Run("older journal is upgraded", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() failed: %v", err)
		}
		if _, err := db.Exec("DROP TABLE run_deletions"); err != nil {
			t.Fatal(err)
		}
		if _, err := db.Exec("UPDATE schema_migrations SET version = 1"); err != nil {
			t.Fatal(err)
		}

		if err := Prepare(db); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='run_deletions'").Scan(&name)
		if err != nil {
			t.Errorf("run_deletions not recreated: %v", err)
		}
	})

	t.Run("newer journal is refused", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() failed: %v", err)
		}
		if _, err := db.Exec("UPDATE schema_migrations SET version = 99"); err != nil {
			t.Fatal(err)
		}

		if err := Prepare(db); !errors.Is(err, ErrSchemaAhead) {
			t.Errorf("Prepare() error = %v, want ErrSchemaAhead", err)
		}
	})
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO run_deletions (run_id, path, reason)
		VALUES ('no-such-run', '/var/log/app/632024.zip', 'expire')
	`)
	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_ReasonCheck(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO runs (id, location, started_at, finished_at, status)
		VALUES ('run-1', '/var/log/app', datetime('now'), datetime('now'), 'success')
	`)
	if err != nil {
		t.Fatalf("Failed to insert run: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO run_deletions (run_id, path, reason)
		VALUES ('run-1', '/var/log/app/632024.zip', 'cleanup')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for unknown reason, but insert succeeded")
	}
}

// openTestDB opens a single-connection in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
