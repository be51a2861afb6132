package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type txKey struct{}

// Beginner はトランザクションを開始できる接続元です。pgxpool.Pool が満たします。
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Queryer は pgx.Tx と pgxpool.Pool に共通するクエリ実行インターフェースです。
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Transactor は context にトランザクションを載せて関数を実行します。
// nil の Transactor はトランザクションを張らずにそのまま実行します。
// 既にトランザクション内にいる場合は外側のトランザクションを再利用します。
type Transactor struct {
	db Beginner
}

// NewTransactor は Transactor を生成します。db が nil の場合は nil を返します。
func NewTransactor(db Beginner) *Transactor {
	if db == nil {
		return nil
	}
	return &Transactor{db: db}
}

// ReadOnly は読み取り専用トランザクションで fn を実行します。
func (t *Transactor) ReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return t.run(ctx, pgx.ReadOnly, fn)
}

// ReadWrite は読み書きトランザクションで fn を実行し、成功時にコミットします。
func (t *Transactor) ReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return t.run(ctx, pgx.ReadWrite, fn)
}

func (t *Transactor) run(ctx context.Context, mode pgx.TxAccessMode, fn func(context.Context) error) (err error) {
	if fn == nil {
		return errors.New("postgres: transaction function is required")
	}
	if t == nil || InTx(ctx) {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{AccessMode: mode})
	if err != nil {
		return fmt.Errorf("postgres: begin %s tx: %w", mode, err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("postgres: rollback: %w", rbErr))
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// InTx は ctx がトランザクションを保持しているかを返します。
func InTx(ctx context.Context) bool {
	_, ok := txFrom(ctx)
	return ok
}

// Conn は ctx 内のトランザクションを返し、なければ fallback を返します。
func Conn(ctx context.Context, fallback Queryer) Queryer {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return fallback
}

func txFrom(ctx context.Context) (pgx.Tx, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}
