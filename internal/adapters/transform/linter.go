package transform

import (
	"context"

	"go.trai.ch/polish/internal/adapters/shell"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/zerr"
)

// LintEngine is the lint autofixer bound to one workspace root.
type LintEngine struct {
	Root       string
	Executable string
	spec       domain.CommandSpec
}

// NewLintEngine locates the linter executable for root. It returns nil and
// no error when no linter command is configured.
func NewLintEngine(root string, spec domain.CommandSpec) (*LintEngine, error) {
	if len(spec.Command) == 0 {
		return nil, nil
	}

	exe, err := shell.LookPath(spec.Command[0], root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "linter executable not found"), "command", spec.Command[0])
	}

	return &LintEngine{Root: root, Executable: exe, spec: spec}, nil
}

// Fix returns text with autofixes applied, or text unchanged when nothing was fixed.
func (e *LintEngine) Fix(ctx context.Context, runner CommandRunner, text string, item domain.WorkItem) (string, error) {
	args := e.spec.Args(item.Path)
	args[0] = e.Executable

	res, err := runner.Run(ctx, shell.Command{Args: args, Dir: e.Root, Stdin: text})
	return decodeOutput(e.spec.Output, text, res, err)
}
