package console

import "github.com/charmbracelet/lipgloss"

var (
	colorRed    = lipgloss.Color("#FF4D4D")
	colorGreen  = lipgloss.Color("#2ECC71")
	colorYellow = lipgloss.Color("#FFFF00")
	colorCyan   = lipgloss.Color("#00FFFF")
	colorGray   = lipgloss.Color("#666666")
	colorWhite  = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	runningDotStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	busyDotStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	idleDotStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	allowedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorGreen).
			Padding(1, 4).
			Align(lipgloss.Center)

	deniedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorRed).
			Padding(1, 4).
			Align(lipgloss.Center)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	footerDescStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)
