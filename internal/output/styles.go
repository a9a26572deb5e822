package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Session console
	Highlight lipgloss.Style

	// Listing styles
	Header lipgloss.Style
	Label  lipgloss.Style
	Muted  lipgloss.Style

	// Diagnostics
	Warning lipgloss.Style
	Danger  lipgloss.Style
}{
	Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // Green

	Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")), // Gray

	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red
}

// PlatformStyle returns the style used to tag a platform name
func PlatformStyle(platform string) lipgloss.Style {
	switch platform {
	case "ios":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("33")) // Blue
	case "android":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("142")) // Yellow-green
	default:
		return Styles.Muted
	}
}
