package cli

import (
	"fmt"

	"github.com/vburojevic/rnrun/internal/buildlog"
	"github.com/vburojevic/rnrun/internal/config"
	"github.com/vburojevic/rnrun/internal/output"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	store := globals.Store()

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("config", map[string]interface{}{
			"format":  cfg.Format,
			"quiet":   cfg.Quiet,
			"verbose": cfg.Verbose,
			"logs": map[string]interface{}{
				"dir":      store.Dir(),
				"max_logs": store.MaxLogs(),
			},
			"file": config.ConfigFile(),
		})
	}

	// Text output
	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:  %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  quiet:   %v\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %v\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Logs:")
	fmt.Fprintf(globals.Stdout, "  dir:      %s\n", store.Dir())
	fmt.Fprintf(globals.Stdout, "  max_logs: %d\n", store.MaxLogs())

	if path := config.ConfigFile(); path != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", path)
	}

	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("config_path", map[string]string{
			"path": path,
		})
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.rn-run.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.rn-run.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/rn-run/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	sampleConfig := fmt.Sprintf(`# rn-run configuration file
# Place this file at ./.rn-run.yaml, ~/.rn-run.yaml, or ~/.config/rn-run/config.yaml

# Output format: "text" (default) or "ndjson"
format: text

# Suppress informational output
quiet: false

# Enable verbose/debug output
verbose: false

logs:
  # Where build logs are written (default: ~/%s)
  # dir: /path/to/logs

  # How many build logs to keep; older ones are deleted when a new build starts
  max_logs: %d
`, buildlog.DefaultLogDir, buildlog.DefaultMaxLogs)

	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
