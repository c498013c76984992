package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorMagenta = "#ff00ff"
	colorGrey    = "#777777"
	colorRed     = "#ff5f5f"
	colorGreen   = "#5fd787"
)

var (
	captionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMagenta)).Bold(true).Padding(1, 2)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGrey)).Padding(0, 2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)).Padding(0, 2)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)).Bold(true)
	noteStyle     = lipgloss.NewStyle().PaddingLeft(2)
	dateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGrey))
	dialogStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorMagenta)).
			Padding(1, 3).
			Margin(1, 2)
	buttonStyle       = lipgloss.NewStyle().Padding(0, 2)
	activeButtonStyle = buttonStyle.Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color(colorMagenta))
)
