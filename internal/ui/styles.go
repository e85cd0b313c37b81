package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. Single cyan accent keeps output readable on both light and
// dark terminals.
const (
	ColorCyan     = "45"  // Primary accent - result titles, headers
	ColorCyanDim  = "37"  // Dimmed accent - scores, engine tags
	ColorWhite    = "255" // Important values
	ColorGray     = "245" // Labels, source paths
	ColorDarkGray = "238" // Separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds the render styles for CLI output.
type Styles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	Score     lipgloss.Style
	Source    lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns the colored styles for terminal output.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Score:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyanDim)),
		Source:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Value:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain output (pipes, files,
// NO_COLOR environments).
func NoColorStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle(),
		Title:     lipgloss.NewStyle(),
		Score:     lipgloss.NewStyle(),
		Source:    lipgloss.NewStyle(),
		Label:     lipgloss.NewStyle(),
		Value:     lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Separator: lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
