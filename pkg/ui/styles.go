package ui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors for light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorFold    = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorHidden  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorPath    = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
)

var (
	styleHeader = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	styleStatus = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	styleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted)

	styleLegendOn = lipgloss.NewStyle().
			Foreground(ColorText)

	styleLegendOff = lipgloss.NewStyle().
			Foreground(ColorHidden).
			Strikethrough(true)

	styleNode = lipgloss.NewStyle().
			Foreground(ColorAccent)

	styleNodeFolded = lipgloss.NewStyle().
			Foreground(ColorFold).
			Bold(true)

	styleNodeOnPath = lipgloss.NewStyle().
			Foreground(ColorPath).
			Bold(true)

	styleNodeCursor = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Reverse(true)
)
