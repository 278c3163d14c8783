package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run every stage and print the full report",
	Long: `Runs leader detection, block building, the control flow graph, its
metrics and reaching definitions, and prints the whole report as JSON or YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "json" && format != "yaml" {
			return fmt.Errorf("unknown format: %s (use 'json' or 'yaml')", format)
		}

		report, err := runReport(cmd, args[0])
		if err != nil {
			return err
		}

		if format == "json" {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	analyzeCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	RootCmd.AddCommand(analyzeCmd)
}
