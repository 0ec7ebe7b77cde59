package shared

import (
	"path/filepath"
	"testing"
)

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		file      string
		version   int
		name      string
		direction string
		ok        bool
	}{
		{"0000_create_lookup_cache_up.sql", 0, "create_lookup_cache", "up", true},
		{"0001_add_lookup_hits_down.sql", 1, "add_lookup_hits", "down", true},
		{"0002_missing_direction.sql", 0, "", "", false},
		{"readme.md", 0, "", "", false},
		{"abc_thing_up.sql", 0, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, direction, ok := parseMigrationName(tt.file)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if version != tt.version || name != tt.name || direction != tt.direction {
				t.Errorf("got (%d, %q, %q), want (%d, %q, %q)", version, name, direction, tt.version, tt.name, tt.direction)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	script := "-- header\nCREATE TABLE a (x INT); -- trailing\n\nCREATE INDEX i ON a(x);\n"
	stmts := splitStatements(script)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (x INT)" {
		t.Errorf("unexpected first statement %q", stmts[0])
	}
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration version %d missing SQL", m.Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		ran, err := RunMigrations(db)
		if err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if ran == 0 {
			t.Error("expected migrations to run on a fresh database")
		}

		if _, err := db.Exec("SELECT hits FROM lookup_cache LIMIT 1"); err != nil {
			t.Errorf("lookup_cache.hits should exist after migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT hits FROM lookup_cache LIMIT 1"); err == nil {
			t.Error("hits column should be gone after rolling back the latest migration")
		}
		if _, err := db.Exec("SELECT query_key FROM lookup_cache LIMIT 1"); err != nil {
			t.Errorf("lookup_cache should survive a single rollback: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count != ran-1 {
			t.Errorf("expected %d applied migrations after rollback, got %d", ran-1, count)
		}
	})

	t.Run("Rollback Empty", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error rolling back with nothing applied")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		ran, err := RunMigrations(db)
		if err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}
		if ran != 0 {
			t.Errorf("expected no migrations on second run, got %d", ran)
		}
	})

	t.Run("OpenCache", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "cache.db")
		db, err := OpenCache(DatabaseConfig{Path: path, MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("failed to open cache: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("SELECT 1 FROM lookup_cache LIMIT 1"); err != nil {
			t.Errorf("lookup_cache should exist: %v", err)
		}
	})
}
