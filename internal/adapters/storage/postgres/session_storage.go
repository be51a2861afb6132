// Package postgres は client_state テーブルにセッションを保存する session.Storage の実装です。
package postgres

import (
	"context"
	"fmt"

	"github.com/ogurasousui/codex-directory-client/internal/core/session"
	pgdb "github.com/ogurasousui/codex-directory-client/internal/platform/db/postgres"
)

const (
	selectStateSQL = `
        SELECT key, value
          FROM client_state
         WHERE namespace = $1
           AND key IN ($2, $3)
    `
	upsertStateSQL = `
        INSERT INTO client_state (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (namespace, key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `
	deleteStateSQL = `
        DELETE FROM client_state
         WHERE namespace = $1
           AND key IN ($2, $3)
    `
)

// SessionStorage は namespace ごとに token と user の行を保持します。
type SessionStorage struct {
	pool      pgdb.Queryer
	tx        *pgdb.Transactor
	namespace string
}

var _ session.Storage = (*SessionStorage)(nil)

// NewSessionStorage は SessionStorage を生成します。tx が nil の場合はトランザクションを使いません。
func NewSessionStorage(pool pgdb.Queryer, tx *pgdb.Transactor, namespace string) *SessionStorage {
	return &SessionStorage{pool: pool, tx: tx, namespace: namespace}
}

// Load は保存済みのセッションを読み込みます。行がなければ空の Persisted を返します。
func (s *SessionStorage) Load(ctx context.Context) (session.Persisted, error) {
	var p session.Persisted
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		exec := pgdb.Conn(ctx, s.pool)
		rows, err := exec.Query(ctx, selectStateSQL, s.namespace, session.KeyToken, session.KeyUser)
		if err != nil {
			return fmt.Errorf("postgres: select client_state: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var key, value string
			if err := rows.Scan(&key, &value); err != nil {
				return fmt.Errorf("postgres: scan client_state: %w", err)
			}
			switch key {
			case session.KeyToken:
				p.Token = value
			case session.KeyUser:
				p.User = value
			}
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("postgres: iterate client_state: %w", err)
		}
		return nil
	})
	if err != nil {
		return session.Persisted{}, err
	}
	return p, nil
}

// Save は token と user を同一トランザクションで書き込みます。
func (s *SessionStorage) Save(ctx context.Context, p session.Persisted) error {
	return s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		exec := pgdb.Conn(ctx, s.pool)
		if _, err := exec.Exec(ctx, upsertStateSQL, s.namespace, session.KeyToken, p.Token); err != nil {
			return fmt.Errorf("postgres: upsert token: %w", err)
		}
		if _, err := exec.Exec(ctx, upsertStateSQL, s.namespace, session.KeyUser, p.User); err != nil {
			return fmt.Errorf("postgres: upsert user: %w", err)
		}
		return nil
	})
}

// Clear は token と user を削除します。
func (s *SessionStorage) Clear(ctx context.Context) error {
	return s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		exec := pgdb.Conn(ctx, s.pool)
		if _, err := exec.Exec(ctx, deleteStateSQL, s.namespace, session.KeyToken, session.KeyUser); err != nil {
			return fmt.Errorf("postgres: delete client_state: %w", err)
		}
		return nil
	})
}
