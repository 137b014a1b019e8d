package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/auth"
	"github.com/cristianoliveira/proposal-tracker/internal/colors"
)

// passwordEnv supplies the login password without a prompt.
const passwordEnv = "PROPOSALS_PASSWORD"

type loginClient interface {
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
}

type logoutClient interface {
	SignOut(ctx context.Context) error
}

type whoamiClient interface {
	Session(ctx context.Context) (*auth.Session, error)
}

// NewLoginCmd creates the login command with explicit dependencies.
func NewLoginCmd(client loginClient) *cobra.Command {
	if client == nil {
		panic("NewLoginCmd: client dependency cannot be nil")
	}

	var email, password string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		Long: `Sign in with email and password. The session is stored in the state
directory and refreshed automatically.

USAGE:
    proposals login --email <email> [--password <password>]

The password is read from --password, then from $` + passwordEnv + `, then
from the first line of standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				password = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			}
			session, err := client.SignIn(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					return errors.New("could not sign in, check email and password")
				}
				return err
			}
			colors.Success("Signed in as", session.Email)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")
	return loginCmd
}

// readPassword prompts for the password. A terminal read does not echo;
// piped input is read as one line.
func readPassword(in io.Reader, out io.Writer) string {
	_, _ = fmt.Fprint(out, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return ""
		}
		return string(secret)
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// NewLogoutCmd creates the logout command with explicit dependencies.
func NewLogoutCmd(client logoutClient) *cobra.Command {
	if client == nil {
		panic("NewLogoutCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.SignOut(cmd.Context()); err != nil {
				if errors.Is(err, auth.ErrNoSession) {
					colors.Info("Not signed in.")
					return nil
				}
				return err
			}
			colors.Success("You have signed out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command with explicit dependencies.
func NewWhoamiCmd(client whoamiClient) *cobra.Command {
	if client == nil {
		panic("NewWhoamiCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := client.Session(cmd.Context())
			if err != nil {
				return err
			}
			if session == nil {
				return errors.New("not signed in")
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, session.Email); err != nil {
				return err
			}
			if !session.ExpiresAt.IsZero() {
				colors.Debug("session expires at", session.ExpiresAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewLoginCmd(client), NewLogoutCmd(client), NewWhoamiCmd(client))
}
