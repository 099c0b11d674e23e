package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	item     lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		item:     lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
