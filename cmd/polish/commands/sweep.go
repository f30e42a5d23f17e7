package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/polish/internal/app"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/ui/output"
	"go.trai.ch/polish/internal/ui/style"
)

func (c *CLI) newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Format and lint-fix every supported document in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			progressMode, _ := cmd.Flags().GetString("progress")

			root, err := c.prepare(cmd, ".")
			if err != nil {
				return err
			}

			report, err := c.app.Sweep(cmd.Context(), root, app.SweepOptions{
				Yes:          yes,
				ProgressMode: progressMode,
			})
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			glyph, color := style.Check, string(style.Green)
			if report.Warning() {
				glyph, color = style.Warning, string(style.Yellow)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), output.Paint(out, glyph, color)+" "+report.Message())

			if report.Outcome == domain.OutcomePartialFailure {
				return domain.ErrSweepIncomplete
			}
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().String("progress", "", "Progress output: tui, live, linear or ci (default: auto-detect)")
	return cmd
}
