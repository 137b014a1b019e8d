package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

type addClient interface {
	Create(ctx context.Context, p domain.Proposal) (string, error)
	Location() *time.Location
}

// inputFlags binds the proposal fields shared by add and edit.
func inputFlags(c *cobra.Command, in *domain.ProposalInput) {
	flags := c.Flags()
	flags.StringVar(&in.ClientName, "client", "", "Client name")
	flags.StringVar(&in.SentDate, "sent", "", "Sent date (YYYY-MM-DD or DD/MM/YYYY)")
	flags.StringVar(&in.Value, "value", "", "Proposal value, e.g. 1500.50 or 1.500,50")
	flags.StringVar(&in.Status, "status", "", "pending, approved or rejected")
	flags.StringVar(&in.SentVia, "via", "", "How the proposal was sent")
	flags.StringVar(&in.LastFollowUp, "follow-up", "", "Last follow-up date")
	flags.StringVar(&in.ExpectedReturnDate, "expected-return", "", "Expected return date")
	flags.StringVar(&in.Notes, "notes", "", "Free-form notes")
}

// NewAddCmd creates the add command with explicit dependencies.
func NewAddCmd(client addClient) *cobra.Command {
	if client == nil {
		panic("NewAddCmd: client dependency cannot be nil")
	}

	var in domain.ProposalInput
	addCmd := &cobra.Command{
		Use:   "add [OPTIONS]",
		Short: "Create a proposal",
		Long: `Create a proposal and print its id.

USAGE:
    proposals add --client <name> --sent <date> [OPTIONS]

OPTIONS:
    --client <name>            Client name (required)
    --sent <date>              Sent date, YYYY-MM-DD or DD/MM/YYYY (required)
    --value <value>            Value, e.g. 1500.50 or 1.500,50 (default 0)
    --status <status>          pending (default), approved or rejected
    --via <channel>            How the proposal was sent
    --follow-up <date>         Last follow-up date (default: the sent date)
    --expected-return <date>   Expected return date
    --notes <text>             Free-form notes
    -h, --help                 Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := Add(cmd.Context(), client, in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	inputFlags(addCmd, &in)
	return addCmd
}

// Add validates the input and creates the proposal.
func Add(ctx context.Context, client addClient, in domain.ProposalInput) (string, error) {
	p, err := in.Proposal(client.Location())
	if err != nil {
		return "", err
	}
	return client.Create(ctx, p)
}

func init() {
	cmd.RootCmd.AddCommand(NewAddCmd(client))
}
