package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMigrationsOrdersAndFilters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_indexes.sql", "CREATE INDEX x ON t (a);")
	writeFile(t, dir, "001_init.sql", "CREATE TABLE t (a INT);")
	writeFile(t, dir, "010_later.sql", "ALTER TABLE t ADD b INT;")
	writeFile(t, dir, "README.md", "not a migration")
	writeFile(t, dir, "noprefix.sql", "SELECT 1;")

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("loaded %d migrations, want 3", len(migrations))
	}

	wantVersions := []int{1, 2, 10}
	for i, m := range migrations {
		if m.Version != wantVersions[i] {
			t.Errorf("migration %d version = %d, want %d", i, m.Version, wantVersions[i])
		}
		if m.SQL == "" {
			t.Errorf("migration %s has empty SQL", m.Name)
		}
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	if _, err := NewMigrator(nil, "/does/not/exist").LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
