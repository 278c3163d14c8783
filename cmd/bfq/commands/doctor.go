package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-blockflow/internal/config"
	"github.com/l3aro/go-blockflow/internal/healthcheck"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on configuration and cache",
	Long: `Checks the configuration, verifies that the report cache can be read and
runs the pipeline over a small built-in program.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validation problems are reported as the config component.
		c, err := config.Resolve()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		result, err := healthcheck.Check(c, effectiveConfigPath())
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		displayDoctorResult(cmd.OutOrStdout(), result)

		if !result.OK() {
			return fmt.Errorf("health check failed: one or more components reported an error")
		}
		return nil
	},
}

// effectiveConfigPath returns the highest priority config file that exists,
// or "" when only defaults apply.
func effectiveConfigPath() string {
	for _, path := range []string{config.ProjectConfigFilePath(), config.GlobalConfigFilePath()} {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func displayDoctorResult(w io.Writer, result *healthcheck.HealthCheckResult) {
	if result.EffectivePath == "" {
		fmt.Fprintln(w, "Using config: defaults (run 'bfq init' to create one)")
	} else {
		fmt.Fprintf(w, "Using config: %s (%s)\n", result.EffectivePath, result.EffectiveScope)
	}

	for _, c := range []healthcheck.ComponentStatus{result.Config, result.Cache, result.Pipeline} {
		fmt.Fprintf(w, "\n%s:\n", c.Name)
		if c.Detail != "" {
			fmt.Fprintf(w, "  %s\n", c.Detail)
		}
		fmt.Fprintf(w, "  Status: %s %s\n", formatStatusIcon(c.Status), c.Status)
		if c.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", c.Error)
		}
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case healthcheck.StatusReady:
		return "✓"
	case healthcheck.StatusDisabled:
		return "-"
	case healthcheck.StatusError:
		return "✗"
	default:
		return "?"
	}
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
