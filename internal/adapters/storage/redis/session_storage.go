// Package redis は Redis にセッションを保存する session.Storage の実装です。
package redis

import (
	"context"
	"fmt"

	"github.com/ogurasousui/codex-directory-client/internal/core/session"
	goredis "github.com/redis/go-redis/v9"
)

// SessionStorage は prefix 付きの token / user キーにセッションを保持します。
type SessionStorage struct {
	rdb    goredis.UniversalClient
	prefix string
}

var _ session.Storage = (*SessionStorage)(nil)

// NewClient は設定値から go-redis のクライアントを生成し、疎通確認を行います。
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rdb, nil
}

// NewSessionStorage は SessionStorage を生成します。
func NewSessionStorage(rdb goredis.UniversalClient, prefix string) *SessionStorage {
	return &SessionStorage{rdb: rdb, prefix: prefix}
}

func (s *SessionStorage) key(name string) string {
	return s.prefix + name
}

// Load は保存済みのセッションを読み込みます。
func (s *SessionStorage) Load(ctx context.Context) (session.Persisted, error) {
	vals, err := s.rdb.MGet(ctx, s.key(session.KeyToken), s.key(session.KeyUser)).Result()
	if err != nil {
		return session.Persisted{}, fmt.Errorf("redis: mget session: %w", err)
	}

	var p session.Persisted
	if v, ok := vals[0].(string); ok {
		p.Token = v
	}
	if v, ok := vals[1].(string); ok {
		p.User = v
	}
	return p, nil
}

// Save は token と user を MULTI/EXEC でまとめて書き込みます。
func (s *SessionStorage) Save(ctx context.Context, p session.Persisted) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.key(session.KeyToken), p.Token, 0)
		pipe.Set(ctx, s.key(session.KeyUser), p.User, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: save session: %w", err)
	}
	return nil
}

// Clear は token と user を削除します。
func (s *SessionStorage) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key(session.KeyToken), s.key(session.KeyUser)).Err(); err != nil {
		return fmt.Errorf("redis: clear session: %w", err)
	}
	return nil
}
