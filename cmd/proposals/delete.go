package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/colors"
)

type deleteClient interface {
	Delete(ctx context.Context, id string) error
}

// NewDeleteCmd creates the delete command with explicit dependencies.
func NewDeleteCmd(client deleteClient) *cobra.Command {
	if client == nil {
		panic("NewDeleteCmd: client dependency cannot be nil")
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a proposal permanently",
		Long: `Delete a proposal permanently. Use archive to hide it instead.

USAGE:
    proposals delete <id> [--yes]

OPTIONS:
    -y, --yes    Do not ask for confirmation
    -h, --help   Show this help`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete proposal %s?", args[0])) {
				colors.Info("Operation cancelled")
				return nil
			}
			return client.Delete(cmd.Context(), args[0])
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return deleteCmd
}

// confirm asks a yes/no question on in and reports a yes answer.
func confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s (y/N): ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	cmd.RootCmd.AddCommand(NewDeleteCmd(client))
}
