package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/polish/internal/ui/style"
)

const barWidth = 24

// View renders the UI.
func (m *Model) View() string {
	var s strings.Builder
	s.WriteString(m.header())

	start, end := m.window()
	for i := start; i < end; i++ {
		s.WriteString("\n" + m.renderRow(i, m.Items[i]))
	}

	if m.Finished {
		s.WriteString("\n")
	}
	return s.String()
}

func (m *Model) header() string {
	filled := int(m.Percent / 100 * barWidth)
	bar := barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render(m.Title),
		" "+bar+" ",
		percentStyle.Render(fmt.Sprintf("%3.0f%%", m.Percent)),
	)
}

// window returns the visible slice of Items. Without a known height every row is shown.
func (m *Model) window() (int, int) {
	if m.ListHeight <= 0 {
		return 0, len(m.Items)
	}
	start := m.ListOffset
	end := min(m.ListOffset+m.ListHeight, len(m.Items))
	if start > end {
		start = end
	}
	return start, end
}

func (m *Model) renderRow(index int, item *ItemNode) string {
	rowStyle := itemDoneStyle
	cursor := "  "
	if index == m.SelectedIdx && !m.FollowMode {
		cursor = selectedStyle.Render("> ")
		rowStyle = selectedStyle
	}
	return cursor + rowStyle.Render(style.Check+" "+item.Message)
}
