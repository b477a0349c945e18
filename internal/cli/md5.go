package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
)

func newMd5Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "md5 <input>",
		Short: "Print the lowercase hex MD5 of input",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), digest.Md5Hex(args[0]))
		},
	}
}
