package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/polish/internal/ui/style"
)

var (
	itemDoneStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Iris).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Iris).
			Foreground(style.White)

	barFilledStyle = lipgloss.NewStyle().
			Foreground(style.Iris)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(style.Slate)

	percentStyle = lipgloss.NewStyle().
			Foreground(style.Slate)
)
