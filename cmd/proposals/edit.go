package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

type editClient interface {
	Save(ctx context.Context, id string, patch domain.Patch) error
	Location() *time.Location
}

// NewEditCmd creates the edit command with explicit dependencies.
func NewEditCmd(client editClient) *cobra.Command {
	if client == nil {
		panic("NewEditCmd: client dependency cannot be nil")
	}

	var in domain.ProposalInput
	editCmd := &cobra.Command{
		Use:   "edit <id> [OPTIONS]",
		Short: "Change fields of a proposal",
		Long: `Change fields of a proposal. Only the given options are updated.

USAGE:
    proposals edit <id> [OPTIONS]

OPTIONS:
    --client <name>            Client name
    --sent <date>              Sent date, YYYY-MM-DD or DD/MM/YYYY
    --value <value>            Value
    --status <status>          pending, approved or rejected
    --via <channel>            How the proposal was sent
    --follow-up <date>         Last follow-up date
    --expected-return <date>   Expected return date
    --clear-expected-return    Remove the expected return date
    --notes <text>             Free-form notes
    -h, --help                 Show this help`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Edit(cmd.Context(), client, args[0], in)
		},
	}
	inputFlags(editCmd, &in)
	editCmd.Flags().BoolVar(&in.ClearExpectedReturn, "clear-expected-return", false, "Remove the expected return date")
	editCmd.MarkFlagsMutuallyExclusive("expected-return", "clear-expected-return")
	return editCmd
}

// Edit applies the given fields to proposal id.
func Edit(ctx context.Context, client editClient, id string, in domain.ProposalInput) error {
	patch, err := in.Patch(client.Location())
	if err != nil {
		return err
	}
	return client.Save(ctx, id, patch)
}

func init() {
	cmd.RootCmd.AddCommand(NewEditCmd(client))
}
