package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
)

type tuiClient interface {
	RunTUI(ctx context.Context) error
}

// NewTUICmd creates the interactive table command.
func NewTUICmd(client tuiClient) *cobra.Command {
	if client == nil {
		panic("NewTUICmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive proposals table",
		Long: `Open the interactive proposals table.

KEYS:
    j/k, up/down     Move the cursor
    h/l, left/right  Previous and next page
    1-6              Sort by a column, again to reverse
    space            Select the row under the cursor
    *                Select every row on the page
    /                Search by client name
    f                Edit filters
    p                Cycle the period preset
    c                Clear filters
    n                New proposal
    e, enter         Edit the proposal under the cursor
    d                Delete the proposal under the cursor
    x                Archive or restore the proposal under the cursor
    A/R/P            Approve, reject or reset the selected rows
    X                Archive or restore the selected rows
    tab              Switch between active and archived proposals
    r                Reload from the backend
    L                Sign out
    ?                Toggle help
    q, ctrl+c        Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.RunTUI(cmd.Context())
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewTUICmd(client))
}
