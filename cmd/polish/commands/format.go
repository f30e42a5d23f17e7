package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <file>",
		Short: "Format and lint-fix a single document in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.prepare(cmd, args[0])
			if err != nil {
				return err
			}
			return c.app.Format(cmd.Context(), root, args[0])
		},
	}
}
