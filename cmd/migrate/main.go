package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/codex-directory-client/internal/platform/config"
	"github.com/ogurasousui/codex-directory-client/internal/platform/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, migrationsDir string

	cmd := &cobra.Command{
		Use:       "migrate [up|down|drop|version]",
		Short:     "Apply client_state schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "drop", "version"},
		RunE: func(_ *cobra.Command, args []string) error {
			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			cfg, err := config.Load(effectiveConfigPath(configPath))
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.StoragePostgres {
				return fmt.Errorf("storage.driver must be %q to run migrations, got %q", config.StoragePostgres, cfg.Storage.Driver)
			}

			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			if err := runMigration(log, action, migrationsDir, cfg.Storage.Database.DSN()); err != nil {
				return fmt.Errorf("migration %s failed: %w", action, err)
			}
			log.WithField("action", action).Info("migration completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	cmd.Flags().StringVar(&migrationsDir, "dir", "assets/migrations", "directory containing migration files")
	return cmd
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func runMigration(log logrus.FieldLogger, action, dir, dsn string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("no migration applied")
			return nil
		}
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("current migration version")
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
