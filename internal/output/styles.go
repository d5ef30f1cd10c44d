package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/vburojevic/lcf/internal/domain"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Log level styles
	Verbose lipgloss.Style
	Debug   lipgloss.Style
	Info    lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Assert  lipgloss.Style

	// Component styles
	Timestamp lipgloss.Style
	PID       lipgloss.Style
	Tag       lipgloss.Style
	Package   lipgloss.Style

	// Summary styles
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	// Filter diagnostics
	Caret lipgloss.Style
	Hint  lipgloss.Style

	// TUI styles
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Input     lipgloss.Style
	Help      lipgloss.Style
}{
	Verbose: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Debug:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),                            // Gray
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),                             // Cyan
	Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),                            // Orange
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),                 // Red bold
	Assert:  lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true).Underline(true), // Magenta bold underline

	Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	PID:       lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	Tag:       lipgloss.NewStyle().Foreground(lipgloss.Color("142")),
	Package:   lipgloss.NewStyle().Foreground(lipgloss.Color("73")),

	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

	Caret: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	Hint:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),

	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
	StatusBar: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1),
	Input:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("239")).Padding(0, 1),
	Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
}

// LevelStyle returns the style for a log level
func LevelStyle(level domain.LogLevel) lipgloss.Style {
	switch level {
	case domain.LogLevelVerbose:
		return Styles.Verbose
	case domain.LogLevelDebug:
		return Styles.Debug
	case domain.LogLevelInfo:
		return Styles.Info
	case domain.LogLevelWarn:
		return Styles.Warn
	case domain.LogLevelError:
		return Styles.Error
	case domain.LogLevelAssert:
		return Styles.Assert
	default:
		return lipgloss.NewStyle()
	}
}

// ColorEnabled reports whether w is a terminal that should get ANSI colors.
// NO_COLOR disables color everywhere.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
