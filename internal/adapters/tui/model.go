// Package tui renders sweep progress as an interactive terminal dashboard.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ItemStatus represents the state of a settled item row.
type ItemStatus string

const (
	// StatusDone indicates the item settled.
	StatusDone ItemStatus = "Done"
	// StatusFinished marks the summary row appended when the sweep ends.
	StatusFinished ItemStatus = "Finished"
)

// ItemNode is one row of the settled list.
type ItemNode struct {
	Message string
	Status  ItemStatus
}

// MsgBegin starts a sweep of Total items.
type MsgBegin struct {
	Title string
	Total int
}

// MsgSettled reports one settled item.
type MsgSettled struct {
	Message      string
	IncrementPct float64
}

// MsgFinish ends the dashboard.
type MsgFinish struct{}

// Model represents the dashboard state.
type Model struct {
	Title       string
	Total       int
	Percent     float64
	Items       []*ItemNode
	SelectedIdx int
	ListOffset  int
	ListHeight  int
	Width       int
	FollowMode  bool
	Finished    bool

	// Interrupt is called when the user presses ctrl+c.
	Interrupt func()
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) follow() {
	if !m.FollowMode || len(m.Items) == 0 {
		return
	}
	m.SelectedIdx = len(m.Items) - 1
	m.ensureVisible()
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // message switch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.Interrupt != nil {
				m.Interrupt()
			}
		case "k", "up":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.FollowMode = false
				m.ensureVisible()
			}
		case "j", "down":
			if m.SelectedIdx < len(m.Items)-1 {
				m.SelectedIdx++
				m.FollowMode = false
				m.ensureVisible()
			}
		case "esc":
			m.FollowMode = true
			m.follow()
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.ListHeight = msg.Height - lipgloss.Height(m.header())
		m.ensureVisible()

	case MsgBegin:
		m.Title = msg.Title
		m.Total = msg.Total
		m.Percent = 0
		m.Items = m.Items[:0]

	case MsgSettled:
		m.Percent = min(m.Percent+msg.IncrementPct, 100)
		m.Items = append(m.Items, &ItemNode{Message: msg.Message, Status: StatusDone})
		m.follow()

	case MsgFinish:
		m.Finished = true
		return m, tea.Quit
	}

	return m, nil
}
