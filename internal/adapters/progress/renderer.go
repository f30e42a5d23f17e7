// Package progress renders bulk sweep progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/polish/internal/ui/output"
	"go.trai.ch/polish/internal/ui/style"
)

var _ ports.Progress = (*Renderer)(nil)

// Renderer implements ports.Progress.
type Renderer struct {
	out  *termenv.Output
	w    io.Writer
	mode Mode
}

// NewRenderer creates a Renderer on w. ModeAuto is resolved with DetectMode.
func NewRenderer(w io.Writer, mode Mode) *Renderer {
	if mode == ModeAuto {
		mode = DetectMode()
	}
	out := output.New(w)
	return &Renderer{out: out, w: out, mode: mode}
}

// Begin prints the title and opens a sink.
func (r *Renderer) Begin(title string, total int) ports.ProgressSink {
	_, _ = fmt.Fprintf(r.w, "%s %s\n", output.Paint(r.out, style.Dot, string(style.Iris)), title)
	return &sink{r: r, total: total}
}

type sink struct {
	r     *Renderer
	total int

	mu      sync.Mutex
	percent float64
	live    bool
	done    bool
}

// Report prints message with the cumulative percentage.
func (s *sink) Report(message string, incrementPct float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}

	s.percent = min(s.percent+incrementPct, 100)
	prefix := output.Paint(s.r.out, fmt.Sprintf("[%3.0f%%]", s.percent), string(style.Slate))

	if s.r.mode == ModeLive {
		s.r.out.ClearLine()
		_, _ = fmt.Fprintf(s.r.w, "\r%s %s", prefix, message)
		s.live = true
		return
	}
	_, _ = fmt.Fprintf(s.r.w, "%s %s\n", prefix, message)
}

// Done terminates the live status line.
func (s *sink) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	if s.live {
		_, _ = fmt.Fprintln(s.r.w)
	}
}
