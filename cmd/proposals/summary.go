package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/format"
)

type summaryClient interface {
	Proposals(ctx context.Context) ([]domain.Proposal, error)
	Now() time.Time
}

// NewSummaryCmd creates the summary command with explicit dependencies.
func NewSummaryCmd(client summaryClient) *cobra.Command {
	if client == nil {
		panic("NewSummaryCmd: client dependency cannot be nil")
	}

	var formatFlag string
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals by status and overdue follow-ups",
		Long: `Show the dashboard totals of active proposals.

Counts and values are grouped by status. Follow-ups count the pending
proposals whose last follow-up is more than 30 days old (warning) or more
than 90 days old (critical). Archived proposals are not counted.

USAGE:
    proposals summary [--format table|simple|json]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintSummary(cmd.Context(), cmd.OutOrStdout(), client, formatFlag)
		},
	}
	summaryCmd.Flags().StringVar(&formatFlag, "format", string(format.FormatterTypeTable), "Output format: table, simple or json")
	return summaryCmd
}

// PrintSummary writes the aggregates of the current proposals.
func PrintSummary(ctx context.Context, w io.Writer, client summaryClient, formatName string) error {
	formatterType, err := format.ParseFormatterType(formatName)
	if err != nil {
		return err
	}
	proposals, err := client.Proposals(ctx)
	if err != nil {
		return err
	}
	now := client.Now()
	return format.NewFormatter(formatterType, now).FormatSummary(domain.Summarize(proposals, now), w)
}

func init() {
	cmd.RootCmd.AddCommand(NewSummaryCmd(client))
}
