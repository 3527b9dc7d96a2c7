package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("63")
	colorMuted   = lipgloss.Color("245")
	colorGood    = lipgloss.Color("42")
	colorWarn    = lipgloss.Color("214")
	colorBad     = lipgloss.Color("203")

	StyleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	StyleSubtle   = lipgloss.NewStyle().Foreground(colorMuted)
	StyleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	StyleSkipped  = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
	StyleGood     = lipgloss.NewStyle().Foreground(colorGood)
	StyleWarn     = lipgloss.NewStyle().Foreground(colorWarn)
	StyleError    = lipgloss.NewStyle().Foreground(colorBad)
	StyleBadge    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(colorBad).Foreground(lipgloss.Color("230"))
	StylePanel    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	StyleFocused  = StylePanel.BorderForeground(colorPrimary)
)
