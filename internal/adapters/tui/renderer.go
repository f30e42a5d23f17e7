package tui

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/polish/internal/ui/output"
)

var _ ports.Progress = (*Renderer)(nil)

// Renderer implements ports.Progress with a Bubble Tea program per sweep.
type Renderer struct {
	w         io.Writer
	interrupt func()
	opts      []tea.ProgramOption
}

// NewRenderer creates a Renderer drawing on w, or stderr when w is nil.
// interrupt is called when the user presses ctrl+c and may be nil.
func NewRenderer(w io.Writer, interrupt func(), opts ...tea.ProgramOption) *Renderer {
	if w == nil {
		w = os.Stderr
	}
	lipgloss.SetColorProfile(output.ColorProfile())

	return &Renderer{
		w:         w,
		interrupt: interrupt,
		opts:      opts,
	}
}

// Begin launches the dashboard in a background goroutine.
func (r *Renderer) Begin(title string, total int) ports.ProgressSink {
	model := &Model{FollowMode: true, Interrupt: r.interrupt}
	opts := append([]tea.ProgramOption{tea.WithOutput(r.w), tea.WithoutSignalHandler()}, r.opts...)

	s := &sink{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
	go func() {
		_, err := s.program.Run()
		s.errCh <- err
	}()
	s.program.Send(MsgBegin{Title: title, Total: total})
	return s
}

type sink struct {
	program *tea.Program
	model   *Model
	errCh   chan error
	once    sync.Once
}

// Report forwards a settled item to the dashboard.
func (s *sink) Report(message string, incrementPct float64) {
	s.program.Send(MsgSettled{Message: message, IncrementPct: incrementPct})
}

// Done stops the dashboard and waits for its final frame.
func (s *sink) Done() {
	s.once.Do(func() {
		s.program.Send(MsgFinish{})
		<-s.errCh
	})
}
