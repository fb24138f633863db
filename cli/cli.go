// Package cli wires the transfer harness commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCMD = &cobra.Command{
	Use:          "speedrun-e2e",
	Short:        "End-to-end transfer harness for the Speedrun intent network",
	SilenceUsage: true,
}

func Execute() {
	rootCMD.AddCommand(transferCMD, batchCMD, balancesCMD)
	if err := rootCMD.Execute(); err != nil {
		os.Exit(1)
	}
}
