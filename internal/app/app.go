// Package app は設定からストアとその依存関係を組み立てます。
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/ogurasousui/codex-directory-client/internal/adapters/httpapi"
	"github.com/ogurasousui/codex-directory-client/internal/adapters/storage/file"
	"github.com/ogurasousui/codex-directory-client/internal/adapters/storage/memory"
	pgstorage "github.com/ogurasousui/codex-directory-client/internal/adapters/storage/postgres"
	redisstorage "github.com/ogurasousui/codex-directory-client/internal/adapters/storage/redis"
	"github.com/ogurasousui/codex-directory-client/internal/core/employee"
	"github.com/ogurasousui/codex-directory-client/internal/core/notice"
	"github.com/ogurasousui/codex-directory-client/internal/core/session"
	"github.com/ogurasousui/codex-directory-client/internal/platform/config"
	pgdb "github.com/ogurasousui/codex-directory-client/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-directory-client/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// App はプロセス内で一度だけ構築されるストア群です。
type App struct {
	Config    *config.Config
	Log       logrus.FieldLogger
	Notices   *notice.Center
	Client    *httpapi.Client
	Session   *session.Store
	Employees *employee.Store
	Registry  *prometheus.Registry

	closers []func()
}

// Options は New の差し替え可能な依存関係です。未指定のものは設定から構築します。
type Options struct {
	Clock   clockwork.Clock
	Storage session.Storage
}

// New は cfg から App を構築します。セッションの復元は Start で行います。
func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	a := &App{
		Config:   cfg,
		Log:      log,
		Registry: prometheus.NewRegistry(),
	}

	var rec metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		rec = metrics.New(a.Registry, cfg.Metrics.Namespace)
	}

	a.Notices = notice.NewCenter(opts.Clock, cfg.Notice.TTL, log)

	client, err := httpapi.New(httpapi.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		MaxRetries:     cfg.API.MaxRetries,
		RetryBaseDelay: cfg.API.RetryBaseDelay,
		Clock:          opts.Clock,
		Metrics:        rec,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("app: build api client: %w", err)
	}
	a.Client = client

	storage := opts.Storage
	if storage == nil {
		storage, err = a.openStorage(ctx, cfg.Storage)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Session = session.NewStore(httpapi.NewAuthGateway(client), storage, a.Notices, log)
	a.Employees = employee.NewStore(httpapi.NewEmployeeGateway(client), a.Notices, log)

	client.SetTokenSource(a.Session)
	client.OnUnauthorized(a.Session.HandleUnauthorized)

	return a, nil
}

// Start は永続化領域からセッションを復元します。
func (a *App) Start(ctx context.Context) error {
	return a.Session.Initialize(ctx)
}

// Close は保持している接続を閉じます。
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStorage(ctx context.Context, cfg config.StorageConfig) (session.Storage, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return memory.NewSessionStorage(), nil
	case config.StorageFile:
		return file.NewSessionStorage(cfg.File.Path), nil
	case config.StorageRedis:
		rdb, err := redisstorage.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("app: open redis storage: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		return redisstorage.NewSessionStorage(rdb, cfg.Redis.KeyPrefix), nil
	case config.StoragePostgres:
		pool, err := pgdb.Open(ctx, cfg.Database, a.Log)
		if err != nil {
			return nil, fmt.Errorf("app: open postgres storage: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return pgstorage.NewSessionStorage(pool, pgdb.NewTransactor(pool), cfg.Database.StateKey), nil
	default:
		return nil, fmt.Errorf("app: unsupported storage driver %q", cfg.Driver)
	}
}
