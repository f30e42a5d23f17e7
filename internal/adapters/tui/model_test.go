package tui_test

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polish/internal/adapters/tui"
)

func update(t *testing.T, m *tui.Model, msg tea.Msg) (*tui.Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(*tui.Model)
	require.True(t, ok)
	return model, cmd
}

func settle(t *testing.T, m *tui.Model, n int) *tui.Model {
	t.Helper()
	for i := 1; i <= n; i++ {
		m, _ = update(t, m, tui.MsgSettled{Message: fmt.Sprintf("%d/%d: f%d.ts", i, n, i), IncrementPct: 100 / float64(n)})
	}
	return m
}

func TestModel_Begin(t *testing.T) {
	m := &tui.Model{FollowMode: true}
	m, cmd := update(t, m, tui.MsgBegin{Title: "Formatting 4 file(s)", Total: 4})

	assert.Nil(t, cmd)
	assert.Equal(t, "Formatting 4 file(s)", m.Title)
	assert.Equal(t, 4, m.Total)
	assert.Empty(t, m.Items)
}

func TestModel_SettledAccumulatesPercent(t *testing.T) {
	m := &tui.Model{FollowMode: true}
	m = settle(t, m, 3)

	assert.InDelta(t, 100, m.Percent, 0.001)
	require.Len(t, m.Items, 3)
	assert.Equal(t, "3/3: f3.ts", m.Items[2].Message)
	assert.Equal(t, tui.StatusDone, m.Items[2].Status)
	assert.Equal(t, 2, m.SelectedIdx)
}

func TestModel_PercentIsCapped(t *testing.T) {
	m := &tui.Model{}
	m, _ = update(t, m, tui.MsgSettled{Message: "1/1: a.ts", IncrementPct: 80})
	m, _ = update(t, m, tui.MsgSettled{Message: "late", IncrementPct: 80})

	assert.InDelta(t, 100, m.Percent, 0.001)
}

func TestModel_FollowKeepsNewestVisible(t *testing.T) {
	m := &tui.Model{FollowMode: true, ListHeight: 3}
	m = settle(t, m, 5)

	assert.Equal(t, 4, m.SelectedIdx)
	assert.Equal(t, 2, m.ListOffset)
}

func TestModel_ManualScrollStopsFollowing(t *testing.T) {
	m := &tui.Model{FollowMode: true, ListHeight: 3}
	m = settle(t, m, 5)

	for range 4 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	assert.False(t, m.FollowMode)
	assert.Equal(t, 0, m.SelectedIdx)
	assert.Equal(t, 0, m.ListOffset)

	m, _ = update(t, m, tui.MsgSettled{Message: "late", IncrementPct: 0})
	assert.Equal(t, 0, m.SelectedIdx, "selection stays while not following")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.FollowMode)
	assert.Equal(t, 5, m.SelectedIdx)
	assert.Equal(t, 3, m.ListOffset)
}

func TestModel_DownStopsAtLastItem(t *testing.T) {
	m := &tui.Model{ListHeight: 10}
	m = settle(t, m, 2)

	for range 5 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	}
	assert.Equal(t, 1, m.SelectedIdx)
}

func TestModel_WindowSizeSetsListHeight(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m := &tui.Model{Title: "Formatting"}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})

	assert.Equal(t, 80, m.Width)
	assert.Equal(t, 9, m.ListHeight)
}

func TestModel_CtrlCInterrupts(t *testing.T) {
	interrupted := false
	m := &tui.Model{Interrupt: func() { interrupted = true }}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, interrupted)
	assert.Nil(t, cmd, "the dashboard stays up until the sweep finishes")
}

func TestModel_FinishQuits(t *testing.T) {
	m := &tui.Model{}
	m, cmd := update(t, m, tui.MsgFinish{})

	assert.True(t, m.Finished)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
