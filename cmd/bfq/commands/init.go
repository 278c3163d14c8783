package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-blockflow/internal/config"
	"github.com/l3aro/go-blockflow/internal/healthcheck"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bfq configuration interactively",
	Long: `Guides you through setting up bfq configuration step by step.
Creates a config file with the edge policy, predecessor model, cache and
logging settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func runInit(cmd *cobra.Command) error {
	c := config.DefaultConfig()
	cacheSize := strconv.Itoa(c.CacheSize)

	// === SECTION 1: Analysis ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Edge policy").
				Description("How a control block's branch edge relates to its fall-through edge").
				Options(
					huh.NewOption("Dedupe - merge parallel edges (recommended)", "dedupe"),
					huh.NewOption("Preserve - keep both edges (counts toward complexity)", "preserve"),
				).
				Value(&c.EdgePolicy),
			huh.NewSelect[string]().
				Title("Predecessor model").
				Description("Which blocks feed in[B] when computing reaching definitions").
				Options(
					huh.NewOption("CFG - predecessors from the graph edges", "cfg"),
					huh.NewOption("Linear - the previous block only", "linear"),
				).
				Value(&c.Predecessors),
			huh.NewSelect[string]().
				Title("Solver strategy").
				Description("How reaching definitions walk the blocks to the fixed point").
				Options(
					huh.NewOption("Passes - recompute every block until nothing changes", "passes"),
					huh.NewOption("Worklist - revisit successors of changed blocks", "worklist"),
				).
				Value(&c.Solver),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Cache ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Report cache").
				Description("Reuse reports for unchanged programs?").
				Affirmative("Enable").
				Negative("Disable").
				Value(&c.CacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if c.CacheEnabled {
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cache file").
					Placeholder(c.CachePath).
					Value(&c.CachePath),
				huh.NewInput().
					Title("Maximum cached reports").
					Placeholder(cacheSize).
					Value(&cacheSize).
					Validate(func(s string) error {
						n, err := strconv.Atoi(s)
						if err != nil || n <= 0 {
							return fmt.Errorf("enter a positive number")
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		c.CacheSize, _ = strconv.Atoi(cacheSize)
	}

	// === SECTION 3: Logging ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&c.LogLevel),
			huh.NewConfirm().
				Title("JSON logs").
				Description("Write logs as JSON instead of console text?").
				Value(&c.LogJSON),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 4: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.bfq/config.yaml)", "global"),
					huh.NewOption("Project (./.bfq/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "\n=== Configuration Preview ===")
	fmt.Fprintf(w, "Config path: %s\n", configPath)
	fmt.Fprintf(w, "Edge policy: %s\n", c.EdgePolicy)
	fmt.Fprintf(w, "Predecessors: %s\n", c.Predecessors)
	fmt.Fprintf(w, "Solver: %s\n", c.Solver)
	if c.CacheEnabled {
		fmt.Fprintf(w, "Cache: %s (max %d reports)\n", c.CachePath, c.CacheSize)
	} else {
		fmt.Fprintln(w, "Cache: disabled")
	}
	fmt.Fprintf(w, "Log level: %s (json: %t)\n", c.LogLevel, c.LogJSON)
	fmt.Fprintln(w, "================================")

	if err := c.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(w, "Configuration saved to: %s\n", configPath)

	// === SECTION 5: Health Check ===
	fmt.Fprintln(w, "\n=== Running Health Check ===")
	loaded, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading saved config: %w", err)
	}
	result, err := healthcheck.Check(loaded, configPath)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	displayDoctorResult(w, result)

	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
