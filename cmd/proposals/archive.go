package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/view"
)

type archiveClient interface {
	BulkSetArchived(ctx context.Context, ids []string, archived bool) error
}

type setStatusClient interface {
	BulkSetStatus(ctx context.Context, ids []string, status domain.Status) error
}

// selectionOf dedups ids the way the table selection does.
func selectionOf(ids []string) []string {
	s := view.NewSelection()
	s.Replace(ids)
	return s.IDs()
}

// NewArchiveCmd creates the archive command with explicit dependencies.
func NewArchiveCmd(client archiveClient) *cobra.Command {
	return newArchiveFlagCmd(client, true)
}

// NewRestoreCmd creates the restore command with explicit dependencies.
func NewRestoreCmd(client archiveClient) *cobra.Command {
	return newArchiveFlagCmd(client, false)
}

func newArchiveFlagCmd(client archiveClient, archived bool) *cobra.Command {
	if client == nil {
		panic("NewArchiveCmd: client dependency cannot be nil")
	}

	use, short, long := "archive <id>...", "Archive proposals", `Move proposals to the archived list. They stay out of the summary.

USAGE:
    proposals archive <id>...`
	if !archived {
		use, short, long = "restore <id>...", "Restore archived proposals", `Move archived proposals back to the active list.

USAGE:
    proposals restore <id>...`
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.BulkSetArchived(cmd.Context(), selectionOf(args), archived)
		},
	}
}

// NewSetStatusCmd creates the set-status command with explicit dependencies.
func NewSetStatusCmd(client setStatusClient) *cobra.Command {
	if client == nil {
		panic("NewSetStatusCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "set-status <status> <id>...",
		Short: "Set the status of proposals",
		Long: `Set the status of one or more proposals.

USAGE:
    proposals set-status <pending|approved|rejected> <id>...`,
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{string(domain.StatusPending), string(domain.StatusApproved), string(domain.StatusRejected)},
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(args[0])
			if err != nil {
				return err
			}
			return client.BulkSetStatus(cmd.Context(), selectionOf(args[1:]), status)
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewArchiveCmd(client), NewRestoreCmd(client), NewSetStatusCmd(client))
}
