package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-blockflow/pkg/cfg"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks <file>",
	Short: "Partition a program into basic blocks",
	Long: `Finds the leaders of the program and prints each basic block with its
statements. Use "-" to read the program from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runReport(cmd, args[0])
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), report.Blocks)
		}
		printBlocks(cmd.OutOrStdout(), report.Leaders, report.Blocks)
		return nil
	},
}

// printBlocks prints the leaders and one "B<n>: [stmts]" line per block.
func printBlocks(w io.Writer, leaders []int, blocks []cfg.BasicBlock) {
	fmt.Fprintf(w, "Leaders: %v\n", leaders)
	fmt.Fprintf(w, "\nBlocks (%d):\n", len(blocks))
	for _, b := range blocks {
		fmt.Fprintf(w, "%s: %q\n", b.ID, b.Statements())
	}
}

func init() {
	blocksCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(blocksCmd)
}
