// Package postgres は pgx の接続プールとトランザクション境界を提供します。
package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/codex-directory-client/internal/platform/config"
	"github.com/ogurasousui/codex-directory-client/internal/platform/retry"
	"github.com/sirupsen/logrus"
)

// ApplicationName は接続時に application_name として送信されます。
const ApplicationName = "directory-client"

const (
	pingAttempts = 3
	pingBackoff  = 250 * time.Millisecond
)

// PoolConfig は database 設定から pgxpool.Config を構築します。
// MaxIdleConns が MaxOpenConns を超える場合は MaxOpenConns に揃えます。
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	maxConns := clampInt32(cfg.MaxOpenConns)
	minConns := clampInt32(cfg.MaxIdleConns)
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
		if minConns > maxConns {
			minConns = maxConns
		}
	}
	if minConns > 0 {
		poolCfg.MinConns = minConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	return poolCfg, nil
}

// Open は接続プールを生成し、疎通確認が通るまで数回再試行します。
func Open(ctx context.Context, cfg config.DatabaseConfig, log logrus.FieldLogger) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts:    pingAttempts,
		InitialBackoff: pingBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.WithError(err).WithFields(logrus.Fields{
				"host":    cfg.Host,
				"attempt": attempt,
				"backoff": backoff,
			}).Warn("postgres ping failed")
		},
	}
	_, err = retry.Do(ctx, policy, func(error) retry.Action { return retry.Retry }, func(int) (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

func clampInt32(n int) int32 {
	switch {
	case n <= 0:
		return 0
	case n > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(n)
	}
}
