package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/vburojevic/rnrun/internal/buildlog"
	"github.com/vburojevic/rnrun/internal/config"
	"github.com/vburojevic/rnrun/internal/output"
	"go.uber.org/zap"
)

// CLI is the root command structure for rn-run
type CLI struct {
	// Global flags
	Format  string `short:"f" default:"${config_format}" enum:"ndjson,text" help:"Output format"`
	Quiet   bool   `short:"q" help:"Suppress informational output"`
	Verbose bool   `short:"v" help:"Show debug output (rotation, dropped log writes)"`
	LogDir  string `name:"log-dir" placeholder:"DIR" help:"Build log directory (default: ~/.rn-run/logs)"`

	Version VersionCmd `cmd:"" help:"Show version information"`

	// Commands
	Record  RecordCmd  `cmd:"" help:"Run a build command and capture its output to a new log"`
	Logs    LogsCmd    `cmd:"" help:"List captured build logs"`
	ShowLog ShowLogCmd `cmd:"" name:"show-log" help:"Print a captured build log without colors or spinner noise"`
	Prune   PruneCmd   `cmd:"" help:"Delete old build logs"`
	Config  ConfigCmd  `cmd:"" help:"Show or manage configuration"`

	Completion CompletionCmd `cmd:"" help:"Generate shell completions"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	LogDir  string
	Color   bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Logger  *zap.Logger
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default())
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  cli.Format,
		Quiet:   cli.Quiet,
		Verbose: cli.Verbose,
		LogDir:  cli.LogDir,
		Color:   stdoutIsTerminal(),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}

	// Apply config values if CLI flags weren't explicitly set
	if cfg != nil {
		if !cli.Quiet && cfg.Quiet {
			g.Quiet = cfg.Quiet
		}
		if !cli.Verbose && cfg.Verbose {
			g.Verbose = cfg.Verbose
		}
	}

	g.Logger = newLogger(g.Verbose, g.Stderr)
	return g
}

// Store returns the build log store for the configured directory and cap
func (g *Globals) Store() *buildlog.Store {
	var opts buildlog.Options
	if g.Config != nil {
		opts.Dir = g.Config.Logs.Dir
		opts.MaxLogs = g.Config.Logs.MaxLogs
	}
	if g.LogDir != "" {
		opts.Dir = g.LogDir
	}
	return buildlog.NewStore(opts)
}

// Console returns the sinks a build session mirrors to. In ndjson mode stdout
// is reserved for results, so the human-readable mirror goes to stderr.
func (g *Globals) Console() buildlog.Console {
	console := buildlog.Console{Stdout: g.Stdout, Stderr: g.Stderr}
	if g.Format == "ndjson" {
		console.Stdout = g.Stderr
	}
	if g.Color {
		style := output.Styles.Highlight
		console.Highlight = &style
	}
	return console
}

// Debug prints a debug message if verbose mode is enabled
func (g *Globals) Debug(format string, args ...interface{}) {
	g.logger().Sugar().Debugf(format, args...)
}

func (g *Globals) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("version", map[string]string{
			"version": Version,
			"commit":  Commit,
		})
	}
	fmt.Fprintf(globals.Stdout, "rn-run version %s (%s)\n", Version, Commit)
	return nil
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
