package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ogurasousui/codex-directory-client/internal/core/employee"
	"github.com/ogurasousui/codex-directory-client/internal/platform/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd(c *cli) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the employee list periodically and print changes",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.open(cmd.Context()); err != nil {
				return err
			}
			return c.app.Session.RequireAuthenticated()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return usageError("--interval must be positive")
			}
			return c.watch(cmd.Context(), interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "refresh interval")
	return cmd
}

// watch は interval ごとに一覧を再取得し、セッションが破棄されたら終了します。
func (c *cli) watch(ctx context.Context, interval time.Duration) error {
	var last uint64
	unsubscribe := c.app.Employees.Subscribe(func(_ context.Context, snap employee.Snapshot) {
		if snap.Loading || snap.Version <= last {
			return
		}
		last = snap.Version
		if snap.Err != nil {
			fmt.Fprintf(c.stderr, "refresh failed: %s\n", snap.ErrorMessage())
			return
		}
		fmt.Fprintf(c.stdout, "%s employees=%d\n", time.Now().Format(time.RFC3339), len(snap.Employees))
	})
	defer unsubscribe()

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.app.Config.Metrics.Enabled {
		srv := server.New(c.app.Config.Metrics.ListenAddr, c.app.Registry)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	g.Go(func() error {
		defer cancel()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			_, _ = c.app.Employees.List(ctx)
			c.flushNotices()
			if err := c.app.Session.RequireAuthenticated(); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	return g.Wait()
}
