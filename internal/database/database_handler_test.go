package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"blacklist-api/internal/config"
	"blacklist-api/internal/database/migrations"
)

func TestSetupDBRequiresConnection(t *testing.T) {
	if _, err := SetupDB(context.Background()); err == nil {
		t.Fatal("SetupDB without dialector should fail")
	}
}

func TestSetupDBWithExistingDB(t *testing.T) {
	db := setupBlacklistTestDB(t)

	reused, err := SetupDB(context.Background(), WithExistingDB(db), WithSchemaMigrations(false))
	if err != nil {
		t.Fatalf("SetupDB with existing db returned error: %v", err)
	}
	if reused != db {
		t.Fatal("SetupDB did not reuse the existing connection")
	}
}

func TestNewDialector(t *testing.T) {
	pg, err := NewDialector(config.DatabaseSettings{Driver: config.DriverPostgres, Host: "h", User: "u", Name: "n", Port: "5432"})
	if err != nil {
		t.Fatalf("NewDialector(postgres) returned error: %v", err)
	}
	if pg.Name() != "postgres" {
		t.Fatalf("dialector name = %q, want postgres", pg.Name())
	}

	lite, err := NewDialector(config.DatabaseSettings{Driver: config.DriverSQLite, SQLitePath: "x.db"})
	if err != nil {
		t.Fatalf("NewDialector(sqlite) returned error: %v", err)
	}
	if lite.Name() != "sqlite" {
		t.Fatalf("dialector name = %q, want sqlite", lite.Name())
	}

	if _, err := NewDialector(config.DatabaseSettings{Driver: config.DriverMemory}); err == nil {
		t.Fatal("NewDialector(memory) should fail")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations found")
	}

	data, err := fs.ReadFile(migrations.FS, files[0])
	if err != nil {
		t.Fatalf("read %s: %v", files[0], err)
	}
	body := string(data)
	for _, want := range []string{"-- +goose Up", "-- +goose Down", "CREATE UNIQUE INDEX", "blacklists (email)"} {
		if !strings.Contains(body, want) {
			t.Fatalf("migration %s missing %q", files[0], want)
		}
	}
}
