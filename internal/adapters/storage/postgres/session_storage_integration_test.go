//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/codex-directory-client/internal/core/session"
	"github.com/ogurasousui/codex-directory-client/internal/platform/config"
	pgdb "github.com/ogurasousui/codex-directory-client/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-directory-client/internal/platform/logging"
)

const migrationsDir = "../../../../assets/migrations"

func TestSessionStorage_Roundtrip(t *testing.T) {
	path := os.Getenv("DIRECTORY_IT_CONFIG")
	if path == "" {
		t.Skip("DIRECTORY_IT_CONFIG is not set")
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		t.Skipf("storage driver is %s", cfg.Storage.Driver)
	}

	if err := migrateUp(cfg.Storage.Database.DSN()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pgdb.Open(ctx, cfg.Storage.Database, logging.Discard())
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	storage := NewSessionStorage(pool, pgdb.NewTransactor(pool), "integration")
	t.Cleanup(func() { _ = storage.Clear(ctx) })

	want := session.Persisted{Token: "tok-it", User: `{"email":"it@example.com"}`}
	if err := storage.Save(ctx, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}

	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	got, err = storage.Load(ctx)
	if err != nil {
		t.Fatalf("Load after Clear returned error: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty session after Clear, got %+v", got)
	}
}

func migrateUp(dsn string) error {
	dir, err := filepath.Abs(migrationsDir)
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+filepath.ToSlash(dir), dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
