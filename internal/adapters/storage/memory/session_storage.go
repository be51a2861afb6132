// Package memory はプロセス内に保持する session.Storage の実装です。
package memory

import (
	"context"
	"sync"

	"github.com/ogurasousui/codex-directory-client/internal/core/session"
)

// SessionStorage はプロセス終了とともに破棄されるセッション保存先です。
type SessionStorage struct {
	mu sync.RWMutex
	p  session.Persisted
}

var _ session.Storage = (*SessionStorage)(nil)

// NewSessionStorage は空の SessionStorage を生成します。
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{}
}

func (s *SessionStorage) Load(context.Context) (session.Persisted, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p, nil
}

func (s *SessionStorage) Save(_ context.Context, p session.Persisted) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
	return nil
}

func (s *SessionStorage) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = session.Persisted{}
	return nil
}
