package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/rnrun/internal/cli"
	"github.com/vburojevic/rnrun/internal/config"
)

const quickStart = `rn-run - capture React Native build output to rotating logs

START HERE:
  rn-run record --platform ios -- npx react-native run-ios

Then read it back without colors or spinner noise:
  rn-run show-log

Other useful commands:
  rn-run logs                           List captured build logs
  rn-run prune --keep 3                 Delete all but the newest 3 logs
  rn-run config generate                Print a sample config file
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config values become flag defaults; explicit flags still win.
	vars := kong.Vars{
		"config_format": cfg.Format,
	}

	ctx := kong.Parse(&c,
		kong.Name("rn-run"),
		kong.Description("Run React Native builds and keep their output in rotating log files.\n\nSTART HERE: rn-run record --platform ios -- <build command>"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	_ = globals.Logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
