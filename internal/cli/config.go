package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vburojevic/lcf/internal/config"
	"github.com/vburojevic/lcf/internal/output"
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

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "config",
			"schemaVersion": output.SchemaVersion,
			"run_id":        globals.RunID,
			"config":        cfg,
			"effective": map[string]interface{}{
				"format":     globals.Format,
				"level":      globals.Level,
				"quiet":      globals.Quiet,
				"verbose":    globals.Verbose,
				"match_case": globals.MatchCase,
			},
			"sources": globals.ConfigSources,
		}
		if globals.ConfigFile != "" {
			out["file"] = globals.ConfigFile
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	w := globals.Stdout
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "  format:     %s%s\n", globals.Format, sourceSuffix(globals, "format"))
	fmt.Fprintf(w, "  level:      %s%s\n", globals.Level, sourceSuffix(globals, "level"))
	fmt.Fprintf(w, "  quiet:      %v%s\n", globals.Quiet, sourceSuffix(globals, "quiet"))
	fmt.Fprintf(w, "  verbose:    %v%s\n", globals.Verbose, sourceSuffix(globals, "verbose"))
	fmt.Fprintf(w, "  match_case: %v%s\n", globals.MatchCase, sourceSuffix(globals, "match_case"))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Filter:")
	fmt.Fprintf(w, "  default:        %s\n", cfg.Filter.Default)
	fmt.Fprintf(w, "  mine_packages:  %s\n", strings.Join(cfg.Filter.MinePackages, ", "))
	if len(cfg.Filter.DefaultFields) > 0 {
		fmt.Fprintf(w, "  default_fields: %s\n", strings.Join(cfg.Filter.DefaultFields, ", "))
	}
	if len(cfg.Filter.Keys) > 0 {
		names := make([]string, 0, len(cfg.Filter.Keys))
		for k := range cfg.Filter.Keys {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(w, "  keys.%s: %s\n", k, cfg.Filter.Keys[k])
		}
	}
	if len(cfg.Filter.Exclude) > 0 {
		fmt.Fprintf(w, "  exclude:        %v\n", cfg.Filter.Exclude)
	}
	fmt.Fprintf(w, "  workers:        %d\n", cfg.Filter.Workers)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Input:")
	fmt.Fprintf(w, "  poll_interval:  %s\n", cfg.Input.PollInterval)
	if cfg.Input.Year != 0 {
		fmt.Fprintf(w, "  year:           %d\n", cfg.Input.Year)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Stats:")
	fmt.Fprintf(w, "  top_n:          %d\n", cfg.Stats.TopN)
	fmt.Fprintf(w, "  patterns_file:  %s\n", patternPath(cfg.Stats.PatternsFile))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "UI:")
	fmt.Fprintf(w, "  buffer_size:    %d\n", cfg.UI.BufferSize)

	if globals.ConfigFile != "" {
		fmt.Fprintln(w, "")
		fmt.Fprintf(w, "Loaded from: %s\n", globals.ConfigFile)
	}

	return nil
}

func sourceSuffix(globals *Globals, key string) string {
	if src, ok := globals.ConfigSources[key]; ok && src != config.SourceDefault {
		return " (" + string(src) + ")"
	}
	return ""
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.lcf.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.lcf.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/lcf/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	sampleConfig := `# lcf configuration file
# Place this file at ./.lcf.yaml, ~/.lcf.yaml or ~/.config/lcf/config.yaml
# Every key can be overridden with LCF_<KEY>, e.g. LCF_FILTER_WORKERS=8

# Output format: "ndjson" (default) or "text"
format: ndjson

# Minimum log level: verbose, debug, info, warn, error, assert
level: verbose

# Suppress non-log output (info messages, warnings, diagnostics)
quiet: false

# Enable debug output on stderr
verbose: false

# Case-sensitive filter matching
match_case: false

filter:
  # Filter used when no -e is given
  # default: "package:mine level:INFO"

  # Packages selected by package:mine
  # mine_packages:
  #   - com.example.myapp

  # Fields searched by bare words (default: tag, package, process, message)
  # default_fields: [tag, message]

  # Match mode of key:value without ~ or =: contains, exact or regex
  # keys:
  #   tag: exact

  # Message regexes dropped before filtering
  # exclude:
  #   - "^chatty"

  # Goroutines used to match loaded captures
  workers: 4

input:
  # Year assumed for logcat timestamps (default: current year)
  # year: 2025

  # How often --follow checks for new data
  poll_interval: 250ms

stats:
  top_n: 5
  # patterns_file: ~/.lcf/patterns.json

ui:
  buffer_size: 5000
`

	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
