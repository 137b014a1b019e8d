// Package cmd holds the root command every proposals subcommand hangs from.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/internal/colors"
	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/version"
)

// commandOrder is the order commands are listed in the help text.
var commandOrder = []string{
	"tui",
	"list",
	"summary",
	"add",
	"edit",
	"delete",
	"archive",
	"restore",
	"set-status",
	"login",
	"logout",
	"whoami",
	"serve",
	"version",
}

var (
	debugFlag bool
	quietFlag bool
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "proposals",
	Short:         "Track sales proposals from the terminal.",
	Long:          `Track sales proposals: list, filter and update them, from the terminal or over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return Setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logging.ShutdownGlobal()
	},
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug output")
	RootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors")
	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != RootCmd {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s", cmd.Long, cmd.UsageString())
			return
		}
		PrintHelp(cmd.OutOrStdout(), cmd)
	})
}

// Setup loads the configuration, applies the global flags and starts the
// file logger.
func Setup(cmd *cobra.Command) error {
	config.Load()
	if debugFlag {
		config.Set("debug", "true")
	}
	if quietFlag {
		config.Set("quiet", "true")
	}
	colors.SetDebug(config.GetBool("debug", false))

	if err := logging.InitGlobal(); err != nil {
		colors.Warning("logging disabled:", err.Error())
	}
	logging.Debug("command started", "command", cmd.CommandPath())
	return nil
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// PrintHelp writes the command overview.
func PrintHelp(w io.Writer, root *cobra.Command) {
	var lines []string
	for _, name := range commandOrder {
		for _, c := range root.Commands() {
			if c.Name() == name {
				lines = append(lines, fmt.Sprintf("    %-28s %s", c.Use, c.Short))
				break
			}
		}
	}

	_, _ = fmt.Fprintf(w, `proposals %s

Track sales proposals from the terminal.

USAGE:
    proposals [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --debug         Enable debug output
    -q, --quiet     Only print errors
    -h, --help      Show help message
`, version.String(), strings.Join(lines, "\n"))
}
