package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-directory-client/internal/app"
	"github.com/ogurasousui/codex-directory-client/internal/platform/config"
	"github.com/ogurasousui/codex-directory-client/internal/platform/logging"
	"github.com/spf13/cobra"
)

// cli はコマンド間で共有する実行時の状態です。
type cli struct {
	configPath string
	envFiles   []string
	output     string

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	app *app.App
}

func newRootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "directory",
		Short:         "Employee directory client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	cmd.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the config")
	cmd.PersistentFlags().StringVarP(&c.output, "output", "o", "text", "output format (text or json)")

	cmd.AddCommand(
		newLoginCmd(c),
		newRegisterCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newValidateCmd(c),
		newEmployeesCmd(c),
		newWatchCmd(c),
	)
	return cmd
}

func (c *cli) open(ctx context.Context) error {
	if err := loadEnvFiles(c.envFiles); err != nil {
		return err
	}

	cfg, err := config.Load(effectiveConfigPath(c.configPath))
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	c.app = a

	if err := a.Start(ctx); err != nil {
		log.WithError(err).Warn("starting without a restored session")
	}
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
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

func execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin}
	return run(ctx, c, args)
}

func run(ctx context.Context, c *cli, args []string) int {
	defer c.close()

	cmd := newRootCmd(c)
	cmd.SetArgs(args)
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	err := cmd.ExecuteContext(ctx)
	c.flushNotices()
	if err == nil {
		return 0
	}

	writeError(c.stderr, err)
	if errors.Is(err, errUsage) {
		return 2
	}
	return 1
}
