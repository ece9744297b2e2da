package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("205")
	subtleColor = lipgloss.Color("241")

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	paddingStyle = lipgloss.NewStyle().Padding(1, 2)

	statusStyle = lipgloss.NewStyle().Foreground(subtleColor)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("209"))

	trackTitleStyle = lipgloss.NewStyle().Bold(true)
	cueStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	cueSubStyle     = lipgloss.NewStyle().Foreground(subtleColor).Italic(true)

	selectedTitleStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder(), false, false, false, true).
				BorderForeground(accentColor).
				Foreground(accentColor).
				Padding(0, 0, 0, 1)
)
