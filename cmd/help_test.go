package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestPrintHelp(t *testing.T) {
	root := &cobra.Command{Use: "proposals"}
	root.AddCommand(
		&cobra.Command{Use: "version", Short: "Show version information"},
		&cobra.Command{Use: "list", Short: "List proposals"},
		&cobra.Command{Use: "tui", Short: "Open the interactive table"},
		&cobra.Command{Use: "hidden-extra", Short: "Not in the overview"},
	)

	var buf bytes.Buffer
	PrintHelp(&buf, root)
	out := buf.String()

	assert.Contains(t, out, "USAGE:")
	assert.Contains(t, out, "COMMANDS:")
	assert.Contains(t, out, "OPTIONS:")
	assert.Contains(t, out, "List proposals")
	assert.NotContains(t, out, "hidden-extra")

	tui := bytes.Index(buf.Bytes(), []byte("tui"))
	list := bytes.Index(buf.Bytes(), []byte("    list"))
	version := bytes.Index(buf.Bytes(), []byte("    version"))
	assert.True(t, tui < list && list < version, "commands follow the overview order")
}
