// Package prompt asks yes/no questions on a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/polish/internal/ui/output"
	"go.trai.ch/polish/internal/ui/style"
	"go.trai.ch/zerr"
)

var (
	_ ports.Confirmer = (*Confirmer)(nil)
	_ ports.Confirmer = AutoConfirm{}
)

// Confirmer reads the answer from a line-oriented input.
type Confirmer struct {
	in  *bufio.Reader
	out *termenv.Output
}

// NewConfirmer creates a Confirmer reading from in and prompting on out.
func NewConfirmer(in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{in: bufio.NewReader(in), out: output.New(out)}
}

type answer struct {
	line string
	err  error
}

// Confirm prints prompt and waits for a line. Only "y" or "yes" confirm.
// End of input declines.
func (c *Confirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	_, _ = fmt.Fprintf(c.out, "%s %s [y/N] ", output.Paint(c.out, style.Warning, string(style.Yellow)), prompt)

	answers := make(chan answer, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(c.out)
		return false, zerr.Wrap(ctx.Err(), domain.ErrConfirmFailed.Error())
	case a := <-answers:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, zerr.Wrap(a.err, domain.ErrConfirmFailed.Error())
		}
		if errors.Is(a.err, io.EOF) && a.line == "" {
			_, _ = fmt.Fprintln(c.out)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// AutoConfirm answers yes without asking.
type AutoConfirm struct{}

// Confirm returns true.
func (AutoConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}
