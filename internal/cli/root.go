package cli

import (
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/vburojevic/lcf/internal/config"
	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
	"github.com/vburojevic/lcf/internal/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLI is the root command structure for lcf
type CLI struct {
	// Global flags
	Format    string `short:"f" default:"${config_format}" enum:"ndjson,text" help:"Output format"`
	Level     string `short:"l" default:"${config_level}" help:"Minimum log level (verbose, debug, info, warn, error, assert)"`
	Quiet     bool   `short:"q" help:"Suppress non-log output (only emit log entries)"`
	Verbose   bool   `short:"v" help:"Show debug output on stderr"`
	MatchCase bool   `short:"c" name:"match-case" help:"Match filter text case-sensitively"`

	// Commands
	Filter     FilterCmd     `cmd:"" default:"withargs" help:"Filter logcat output with a filter expression"`
	Check      CheckCmd      `cmd:"" help:"Show how a filter expression parses"`
	Stats      StatsCmd      `cmd:"" help:"Summarize matching entries"`
	Discover   DiscoverCmd   `cmd:"" help:"List the tags, packages and processes in a capture"`
	Keys       KeysCmd       `cmd:"" help:"List filter keys"`
	UI         UICmd         `cmd:"" help:"Interactive live filter"`
	Config     ConfigCmd     `cmd:"" help:"Show configuration"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completions"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format    string
	Level     string
	Quiet     bool
	Verbose   bool
	MatchCase bool
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Config    *config.Config
	Logger    *zap.Logger
	Clock     clock.Clock
	RunID     string

	// Provenance of effective settings, for config show
	ConfigFile    string
	ConfigSources map[string]config.Source
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default(), nil)
}

// NewGlobalsWithConfig creates a new Globals instance. Settings whose
// flag was not given on the command line fall back to cfg.
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config, flagsSet map[string]bool) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:    cli.Format,
		Level:     cli.Level,
		Quiet:     cli.Quiet,
		Verbose:   cli.Verbose,
		MatchCase: cli.MatchCase,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Config:    cfg,
		Clock:     clock.New(),
		RunID:     uuid.NewString(),
	}

	if !flagsSet["format"] && cfg.Format != "" {
		g.Format = cfg.Format
	}
	if !flagsSet["level"] && cfg.Level != "" {
		g.Level = cfg.Level
	}
	if !flagsSet["quiet"] && cfg.Quiet {
		g.Quiet = true
	}
	if !flagsSet["verbose"] && cfg.Verbose {
		g.Verbose = true
	}
	if !flagsSet["match-case"] && cfg.MatchCase {
		g.MatchCase = true
	}

	g.Logger = newLogger(g.Stderr, g.Verbose)
	return g
}

// newLogger is a no-op logger unless verbose, then a console logger at debug level
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core)
}

// Debug prints a debug message if verbose mode is enabled
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Logger == nil {
		return
	}
	g.Logger.Sugar().Debugf(format, args...)
}

// Emitter returns the writer for the selected format on stdout
func (g *Globals) Emitter() output.Emitter {
	return output.NewEmitter(g.Format, g.Stdout, g.RunID)
}

// MinLevel parses the --level flag. Empty means no level filter.
func (g *Globals) MinLevel() (domain.LogLevel, error) {
	if g.Level == "" {
		return domain.LogLevelUnknown, nil
	}
	lvl := domain.ParseLogLevel(g.Level)
	if !lvl.IsValid() {
		return lvl, &CLIError{
			Code:    "INVALID_LEVEL",
			Message: "unknown log level: " + g.Level,
			Hint:    "Use one of verbose, debug, info, warn, error, assert",
		}
	}
	return lvl, nil
}

// FilterOptions builds filter options from config and the --match-case flag
func (g *Globals) FilterOptions() (filter.Options, error) {
	cfg := g.Config
	if cfg == nil {
		cfg = config.Default()
	}
	opts, err := cfg.FilterOptions(g.Clock)
	if err != nil {
		return opts, &CLIError{Code: "INVALID_CONFIG", Message: err.Error(), Hint: "Check the filter section of " + configHint(g), Err: err}
	}
	opts.MatchCase = g.MatchCase
	return opts, nil
}

func configHint(g *Globals) string {
	if g.ConfigFile != "" {
		return g.ConfigFile
	}
	return "your config file"
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	return globals.Emitter().WriteMetadata(Version, Commit, BuildDate)
}

// Version information (set at build time)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = ""
)
