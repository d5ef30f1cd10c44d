package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/lcf/internal/cli"
	"github.com/vburojevic/lcf/internal/config"
)

func main() {
	// Load configuration from files/environment (plus provenance metadata).
	cfg, meta, err := config.LoadWithMeta()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
		meta = nil
	}

	var c cli.CLI

	// Config values become flag defaults; explicit flags still win.
	vars := kong.Vars{
		"config_format": cfg.Format,
		"config_level":  cfg.Level,
	}

	ctx := kong.Parse(&c,
		kong.Name("lcf"),
		kong.Description("Filter Android logcat output with filter expressions\n\nExample: adb logcat -v threadtime | lcf -e 'package:mine level:WARN'"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Record which flags were explicitly provided so config only fills the rest.
	flagsSet := map[string]bool{}
	for _, p := range ctx.Path {
		if p.Flag != nil {
			flagsSet[p.Flag.Name] = true
		}
	}

	globals := cli.NewGlobalsWithConfig(&c, cfg, flagsSet)
	if meta != nil {
		globals.ConfigFile = meta.ConfigFile
	}
	globals.ConfigSources = config.ComputeSources(meta, flagsSet)
	defer globals.Logger.Sync() //nolint:errcheck

	if err := ctx.Run(globals); err != nil {
		globals.Logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
}
