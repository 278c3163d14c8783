// Package commands provides the CLI commands for the blockflow tool.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-blockflow/pkg/cfg"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file>",
	Short: "Build the control flow graph of a program",
	Long: `Builds the Control Flow Graph (CFG) over the basic blocks of a program.
Prints the nodes and edges, as JSON with --json or as Graphviz DOT with --dot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runReport(cmd, args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		jsonOutput, _ := cmd.Flags().GetBool("json")
		dotOutput, _ := cmd.Flags().GetBool("dot")

		switch {
		case jsonOutput:
			return writeJSON(w, report.Graph)
		case dotOutput:
			name, _ := cmd.Flags().GetString("name")
			data, err := cfg.MarshalDOT(report.Graph, name)
			if err != nil {
				return fmt.Errorf("marshaling DOT: %w", err)
			}
			_, err = fmt.Fprintln(w, string(data))
			return err
		}

		printGraph(w, report.Graph)
		return nil
	},
}

// printGraph prints graph information in human-readable format.
func printGraph(w io.Writer, g *cfg.Graph) {
	fmt.Fprintf(w, "=== CFG (%s edges) ===\n", g.Policy)
	if g.Entry != "" {
		fmt.Fprintf(w, "Entry Block: %s\n", g.Entry)
	}
	fmt.Fprintf(w, "\nNodes (%d): %s\n", len(g.Nodes), strings.Join(g.Nodes, ", "))
	fmt.Fprintf(w, "\nEdges (%d):\n", len(g.Edges))
	for _, e := range g.Edges {
		fmt.Fprintf(w, "  %s --%s--> %s\n", e.From, e.Kind, e.To)
	}
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cfgCmd.Flags().Bool("dot", false, "Output as Graphviz DOT")
	cfgCmd.Flags().String("name", "cfg", "Graph name in DOT output")
	cfgCmd.MarkFlagsMutuallyExclusive("json", "dot")
	RootCmd.AddCommand(cfgCmd)
}
