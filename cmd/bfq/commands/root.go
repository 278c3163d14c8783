package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "bfq",
	Short: "blockflow - basic blocks, control flow and reaching definitions",
	Long: `blockflow reads a program with one statement per line and analyzes it.

Commands:
  blocks      Partition the program into basic blocks
  cfg         Show the control flow graph (text, JSON or DOT)
  metrics     Show node, edge and cyclomatic complexity counts
  rd          Compute reaching definitions (gen/kill/in/out)
  analyze     Full report as JSON or YAML
  scan        Summarize every program file under a directory
  init        Create a configuration file interactively
  doctor      Check configuration and cache

Use "bfq [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().String("edges", "", "Edge policy: dedupe or preserve (overrides config)")
	RootCmd.PersistentFlags().String("preds", "", "Predecessor model: cfg or linear (overrides config)")
	RootCmd.PersistentFlags().String("solver", "", "Solver strategy: passes or worklist (overrides config)")
	RootCmd.PersistentFlags().BoolP("verbose", "V", false, "Debug logging to stderr")
	RootCmd.PersistentFlags().Bool("no-cache", false, "Skip the report cache for this run")
}
