// Package file はローカルの JSON ファイルにセッションを保存する session.Storage の実装です。
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ogurasousui/codex-directory-client/internal/core/session"
)

// SessionStorage は token と user をキーに持つ JSON オブジェクトとして保存します。
// 書き込みは一時ファイルからの rename で行うため、両キーは同時に更新されます。
type SessionStorage struct {
	path string
	mu   sync.Mutex
}

var _ session.Storage = (*SessionStorage)(nil)

// NewSessionStorage は SessionStorage を生成します。
func NewSessionStorage(path string) *SessionStorage {
	return &SessionStorage{path: path}
}

// Path は保存先のパスを返します。
func (s *SessionStorage) Path() string {
	return s.path
}

// Load は保存済みのセッションを読み込みます。ファイルがなければ空の Persisted を返します。
func (s *SessionStorage) Load(context.Context) (session.Persisted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return session.Persisted{}, nil
	}
	if err != nil {
		return session.Persisted{}, fmt.Errorf("file: read %s: %w", s.path, err)
	}

	var doc map[string]string
	if err := json.Unmarshal(b, &doc); err != nil {
		return session.Persisted{}, fmt.Errorf("file: parse %s: %w", s.path, err)
	}
	return session.Persisted{Token: doc[session.KeyToken], User: doc[session.KeyUser]}, nil
}

// Save は token と user を書き込みます。
func (s *SessionStorage) Save(_ context.Context, p session.Persisted) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(map[string]string{
		session.KeyToken: p.Token,
		session.KeyUser:  p.User,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode session: %w", err)
	}
	return s.writeAtomic(b)
}

// Clear は保存ファイルを削除します。
func (s *SessionStorage) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file: remove %s: %w", s.path, err)
	}
	return nil
}

func (s *SessionStorage) writeAtomic(b []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("file: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file: write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("file: rename to %s: %w", s.path, err)
	}
	return nil
}
