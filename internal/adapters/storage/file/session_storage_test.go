package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ogurasousui/codex-directory-client/internal/core/session"
)

func TestSessionStorage_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	storage := NewSessionStorage(path)

	p, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !p.Empty() {
		t.Fatalf("expected empty session, got %+v", p)
	}

	want := session.Persisted{Token: "tok-1", User: `{"email":"a@b.com"}`}
	if err := storage.Save(ctx, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat returned error: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected permissions: %v", info.Mode().Perm())
	}

	got, err := NewSessionStorage(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}

	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, got %v", err)
	}
	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
}

func TestSessionStorage_LoadCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := NewSessionStorage(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSessionStorage_SaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	storage := NewSessionStorage(filepath.Join(dir, "session.json"))
	if err := storage.Save(context.Background(), session.Persisted{Token: "t", User: "{}"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "session.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}
