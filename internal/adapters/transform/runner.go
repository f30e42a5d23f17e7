// Package transform runs the two-stage document pipeline: the style
// formatter, then the lint autofixer.
package transform

import (
	"context"

	"go.trai.ch/polish/internal/adapters/shell"
)

// CommandRunner executes one external command.
type CommandRunner interface {
	Run(ctx context.Context, cmd shell.Command) (shell.Result, error)
}
