package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
)

type versionClient interface {
	Version() string
}

// NewVersionCmd creates the version command with explicit dependencies.
func NewVersionCmd(client versionClient) *cobra.Command {
	if client == nil {
		panic("NewVersionCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the current version of proposals.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "proposals version %s\n", client.Version())
			return err
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewVersionCmd(client))
}
