package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-directory-client/internal/core/session"
	"github.com/spf13/cobra"
)

func newLoginCmd(c *cli) *cobra.Command {
	var (
		creds         session.Credentials
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				pw, err := readLine(c)
				if err != nil {
					return err
				}
				creds.Password = pw
			}
			if err := creds.Validate(); err != nil {
				return err
			}
			return c.app.Session.Login(cmd.Context(), creds)
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var form session.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := form.Validate(); err != nil {
				return err
			}
			_, err := c.app.Session.Register(cmd.Context(), form.Input())
			return err
		},
	}

	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "password confirmation")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Session.Logout(cmd.Context())
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := c.app.Session.RequireAuthenticated(); err != nil {
				return err
			}
			snap := c.app.Session.Snapshot()
			if c.jsonOutput() {
				return c.writeJSON(snap.CurrentUser)
			}
			email := ""
			if snap.CurrentUser != nil {
				email = snap.CurrentUser.Email
			}
			_, err := fmt.Fprintln(c.stdout, email)
			return err
		},
	}
}

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the stored session against the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Session.Validate(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(c.stdout, "session is valid")
			return err
		},
	}
}

func readLine(c *cli) (string, error) {
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
