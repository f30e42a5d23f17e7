package tui_test

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/polish/internal/adapters/tui"
)

func newTestRenderer(interrupt func()) *tui.Renderer {
	return tui.NewRenderer(
		io.Discard,
		interrupt,
		tea.WithInput(strings.NewReader("")),
		tea.WithoutRenderer(),
	)
}

func TestRenderer_Lifecycle(t *testing.T) {
	r := newTestRenderer(nil)

	sink := r.Begin("Formatting 2 file(s)", 2)
	sink.Report("1/2: a.ts", 50)
	sink.Report("2/2: b.ts", 50)
	sink.Done()
}

func TestRenderer_DoneIsIdempotent(t *testing.T) {
	r := newTestRenderer(nil)

	sink := r.Begin("Formatting 1 file(s)", 1)
	sink.Done()
	sink.Done()
}

func TestRenderer_SinksAreIndependent(t *testing.T) {
	r := newTestRenderer(nil)

	first := r.Begin("first", 1)
	first.Done()

	second := r.Begin("second", 1)
	second.Report("1/1: a.ts", 100)
	second.Done()

	assert.NotNil(t, second)
}
