// Command proposals tracks sales proposals from the terminal and serves them
// over HTTP.
package main

import (
	"os"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/colors"
)

func main() {
	err := cmd.Execute()
	if cerr := client.Close(); cerr != nil {
		colors.Debug("closing backend:", cerr.Error())
	}
	if err != nil {
		colors.Error(err.Error())
		os.Exit(1)
	}
}
