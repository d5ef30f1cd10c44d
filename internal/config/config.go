package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. LCF_FORMAT or
// LCF_FILTER_WORKERS for filter.workers.
const EnvPrefix = "LCF"

// Config holds application configuration
type Config struct {
	// Global settings
	Format    string `mapstructure:"format" json:"format"`
	Level     string `mapstructure:"level" json:"level"`
	Quiet     bool   `mapstructure:"quiet" json:"quiet"`
	Verbose   bool   `mapstructure:"verbose" json:"verbose"`
	MatchCase bool   `mapstructure:"match_case" json:"match_case"`

	Filter FilterConfig `mapstructure:"filter" json:"filter"`
	Input  InputConfig  `mapstructure:"input" json:"input"`
	Stats  StatsConfig  `mapstructure:"stats" json:"stats"`
	UI     UIConfig     `mapstructure:"ui" json:"ui"`
}

// FilterConfig configures the filter language and the filter command
type FilterConfig struct {
	// Default expression used when no -e is given
	Default string `mapstructure:"default" json:"default,omitempty"`
	// Packages matched by package:mine
	MinePackages []string `mapstructure:"mine_packages" json:"mine_packages,omitempty"`
	// Fields searched by bare literals
	DefaultFields []string `mapstructure:"default_fields" json:"default_fields,omitempty"`
	// Default match mode per string key: contains, exact or regex
	Keys map[string]string `mapstructure:"keys" json:"keys,omitempty"`
	// Message regexes dropped before the filter runs
	Exclude []string `mapstructure:"exclude" json:"exclude,omitempty"`
	Workers int      `mapstructure:"workers" json:"workers"`
}

// InputConfig configures log readers
type InputConfig struct {
	// Year assumed for logcat timestamps, 0 for the current year
	Year         int    `mapstructure:"year" json:"year,omitempty"`
	PollInterval string `mapstructure:"poll_interval" json:"poll_interval"`
}

// StatsConfig configures the stats command
type StatsConfig struct {
	TopN         int    `mapstructure:"top_n" json:"top_n"`
	PatternsFile string `mapstructure:"patterns_file" json:"patterns_file,omitempty"`
}

// UIConfig configures the interactive viewer
type UIConfig struct {
	BufferSize int `mapstructure:"buffer_size" json:"buffer_size"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format: "ndjson",
		Level:  "verbose",
		Filter: FilterConfig{
			Workers: 4,
		},
		Input: InputConfig{
			PollInterval: "250ms",
		},
		Stats: StatsConfig{
			TopN: 5,
		},
		UI: UIConfig{
			BufferSize: 5000,
		},
	}
}

// Meta records where the loaded configuration came from
type Meta struct {
	// ConfigFile is the file that was read, empty when none was found
	ConfigFile string
	// FileKeys are the dotted keys set by the config file
	FileKeys map[string]bool
	// EnvKeys are the dotted keys overridden from LCF_* variables
	EnvKeys map[string]bool
}

// Load loads configuration from files and environment
// Config file search order (highest precedence first):
// 1. ./.lcf.yaml or ./.lcf.yml
// 2. ~/.lcf.yaml or ~/.lcf.yml
// 3. $XDG_CONFIG_HOME/lcf/config.yaml (or ~/.config/lcf/config.yaml)
// 4. /etc/lcf/config.yaml
func Load() (*Config, error) {
	cfg, _, err := LoadWithMeta()
	return cfg, err
}

// LoadWithMeta is Load plus provenance of every overridden key
func LoadWithMeta() (*Config, *Meta, error) {
	return load(findConfigFile())
}

// LoadFromFile loads configuration from a specific file. Environment
// overrides still apply.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, *Meta, error) {
	v := newViper()
	meta := &Meta{
		ConfigFile: path,
		FileKeys:   map[string]bool{},
		EnvKeys:    map[string]bool{},
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, err
		}
		fv := viper.New()
		fv.SetConfigFile(path)
		if err := fv.ReadInConfig(); err == nil {
			for _, k := range fv.AllKeys() {
				meta.FileKeys[k] = true
			}
		}
	}

	for _, k := range v.AllKeys() {
		if _, ok := os.LookupEnv(envName(k)); ok {
			meta.EnvKeys[k] = true
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, meta, nil
}

// newViper registers every default so AutomaticEnv can see each key
func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("format", d.Format)
	v.SetDefault("level", d.Level)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("match_case", d.MatchCase)
	v.SetDefault("filter.default", d.Filter.Default)
	v.SetDefault("filter.mine_packages", []string{})
	v.SetDefault("filter.default_fields", []string{})
	v.SetDefault("filter.exclude", []string{})
	v.SetDefault("filter.workers", d.Filter.Workers)
	v.SetDefault("input.year", d.Input.Year)
	v.SetDefault("input.poll_interval", d.Input.PollInterval)
	v.SetDefault("stats.top_n", d.Stats.TopN)
	v.SetDefault("stats.patterns_file", d.Stats.PatternsFile)
	v.SetDefault("ui.buffer_size", d.UI.BufferSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".lcf.yaml", ".lcf.yml"}

	var searchPaths []string
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, home)
	}
	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	var configDirs []string
	if configDir, err := os.UserConfigDir(); err == nil {
		configDirs = append(configDirs, filepath.Join(configDir, "lcf"))
	}
	configDirs = append(configDirs, "/etc/lcf")
	for _, dir := range configDirs {
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}

// Source names where a setting's effective value came from
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// globalFlags maps config keys to the kong flag names that override them
var globalFlags = map[string]string{
	"format":     "format",
	"level":      "level",
	"quiet":      "quiet",
	"verbose":    "verbose",
	"match_case": "match-case",
}

// ComputeSources reports, for each global setting, which layer won:
// flag over env over file over default.
func ComputeSources(meta *Meta, flagsSet map[string]bool) map[string]Source {
	out := make(map[string]Source, len(globalFlags))
	for key, flag := range globalFlags {
		switch {
		case flagsSet[flag]:
			out[key] = SourceFlag
		case meta != nil && meta.EnvKeys[key]:
			out[key] = SourceEnv
		case meta != nil && meta.FileKeys[key]:
			out[key] = SourceFile
		default:
			out[key] = SourceDefault
		}
	}
	return out
}
