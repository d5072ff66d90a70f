// Command outline parses thesis tables of contents from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "outline",
		Short:        "Parse and export thesis outlines",
		SilenceUsage: true,
	}
	root.AddCommand(newParseCmd(), newExportCmd())
	return root
}
