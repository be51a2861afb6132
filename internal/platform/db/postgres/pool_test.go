package postgres

import (
	"testing"
	"time"

	"github.com/ogurasousui/codex-directory-client/internal/platform/config"
)

func TestPoolConfig(t *testing.T) {
	t.Parallel()

	poolCfg, err := PoolConfig(config.DatabaseConfig{
		Host:            "localhost",
		Port:            15432,
		User:            "directory",
		Password:        "secret",
		Name:            "directory",
		SSLMode:         "disable",
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("PoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns != 8 || poolCfg.MinConns != 2 {
		t.Errorf("unexpected pool size: max=%d min=%d", poolCfg.MaxConns, poolCfg.MinConns)
	}
	if poolCfg.MaxConnLifetime != 30*time.Minute {
		t.Errorf("unexpected MaxConnLifetime: %v", poolCfg.MaxConnLifetime)
	}
	if poolCfg.MaxConnIdleTime != 10*time.Minute {
		t.Errorf("unexpected MaxConnIdleTime: %v", poolCfg.MaxConnIdleTime)
	}
	if poolCfg.ConnConfig.Database != "directory" || poolCfg.ConnConfig.Port != 15432 {
		t.Errorf("unexpected connection target: %s:%d", poolCfg.ConnConfig.Database, poolCfg.ConnConfig.Port)
	}
	if got := poolCfg.ConnConfig.RuntimeParams["application_name"]; got != ApplicationName {
		t.Errorf("unexpected application_name: %q", got)
	}
}

func TestPoolConfig_ClampsIdleToMax(t *testing.T) {
	t.Parallel()

	poolCfg, err := PoolConfig(config.DatabaseConfig{
		Host:         "localhost",
		Port:         5432,
		User:         "u",
		Password:     "p",
		Name:         "db",
		SSLMode:      "disable",
		MaxOpenConns: 2,
		MaxIdleConns: 5,
	})
	if err != nil {
		t.Fatalf("PoolConfig returned error: %v", err)
	}
	if poolCfg.MinConns != 2 {
		t.Fatalf("expected MinConns clamped to 2, got %d", poolCfg.MinConns)
	}
}
