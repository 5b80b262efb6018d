package sqlite

import (
	"path/filepath"
	"testing"
)

func TestRunMigrations(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database := NewSQLiteDB(&SQLiteConfig{Path: dbPath})
	err := database.Connect()
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()

	db := database.DB()

	// Verify schema_migrations table exists
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check schema_migrations table: %v", err)
	}
	if count != 1 {
		t.Errorf("schema_migrations table not created")
	}

	// Verify posts table exists
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='posts'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check posts table: %v", err)
	}
	if count != 1 {
		t.Errorf("posts table not created")
	}

	// Verify index exists
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_posts_posted_on'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check index: %v", err)
	}
	if count != 1 {
		t.Errorf("idx_posts_posted_on index not created")
	}

	// Verify migration was recorded
	var version int
	var name string
	err = db.QueryRow("SELECT version, name FROM schema_migrations WHERE version = 1").Scan(&version, &name)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	if name != "create_posts_table" {
		t.Errorf("name = %q, want %q", name, "create_posts_table")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	// Connect first time
	database := NewSQLiteDB(&SQLiteConfig{Path: dbPath})
	err := database.Connect()
	if err != nil {
		t.Fatalf("First Connect() error = %v", err)
	}
	database.Close()

	// Connect second time; migrations must not re-run or fail
	database = NewSQLiteDB(&SQLiteConfig{Path: dbPath})
	err = database.Connect()
	if err != nil {
		t.Fatalf("Second Connect() error = %v", err)
	}
	defer database.Close()

	var count int
	err = database.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("migration count = %d, want %d", count, len(migrations))
	}
}
