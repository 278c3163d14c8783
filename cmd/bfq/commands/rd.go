package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-blockflow/pkg/dfg"
)

var rdCmd = &cobra.Command{
	Use:   "rd <file>",
	Short: "Compute reaching definitions of a program",
	Long: `Extracts the definitions of each basic block and iterates the
reaching definitions equations to a fixed point:

  in[B]  = union of out[P] over the predecessors P of B
  out[B] = gen[B] ∪ (in[B] - kill[B])

Prints the definition map and the gen/kill/in/out table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runReport(cmd, args[0])
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), report.Dataflow)
		}
		return printDataflow(cmd.OutOrStdout(), report.Dataflow)
	},
}

// printDataflow prints the definition map, the definition statements and
// the converged dataflow table.
func printDataflow(w io.Writer, t *dfg.Table) error {
	fmt.Fprintf(w, "=== Reaching Definitions (%s predecessors, %s solver, %d iterations) ===\n",
		t.Predecessors, t.Strategy, t.Iterations)

	fmt.Fprintf(w, "\nDefinitions (%d):\n", len(t.Definitions))
	for _, d := range t.Definitions {
		fmt.Fprintf(w, "  %s: %s\n", d.Label(), d)
	}
	for _, d := range t.Definitions {
		fmt.Fprintf(w, "  %s: line %d -> %s\n", d.Label(), d.Line, d.Statement)
	}

	fmt.Fprintln(w, "\nDataflow Table:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Block\tgen[B]\tkill[B]\tin[B]\tout[B]")
	for _, bf := range t.Blocks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", bf.Block, bf.Gen, bf.Kill, bf.In, bf.Out)
	}
	return tw.Flush()
}

func init() {
	rdCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(rdCmd)
}
