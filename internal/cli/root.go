// Package cli wires the hashbench commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hashbench",
		Short:         "Brute-force MD5 preimage search",
		Long:          "hashbench searches short alphanumeric preimages of MD5 digests and compares digest primitives and scheduling regimes.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newCrackCmd(),
		newMd5Cmd(),
		newBenchCmd(),
	)
	return root
}

// Execute runs the CLI. It should be called by the main package.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}
