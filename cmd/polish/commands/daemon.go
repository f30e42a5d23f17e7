package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the background daemon",
	}

	cmd.AddCommand(c.newDaemonServeCmd())
	cmd.AddCommand(c.newDaemonStatusCmd())
	cmd.AddCommand(c.newDaemonStopCmd())
	cmd.AddCommand(c.newDaemonInvalidateCmd())

	return cmd
}

func (c *CLI) newDaemonServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "serve",
		Short:  "Start the daemon server (internal use)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := c.prepare(cmd, ".")
			if err != nil {
				return err
			}
			return c.app.ServeDaemon(cmd.Context(), root)
		},
	}
}

func (c *CLI) newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := c.workspace(".")
			if err != nil {
				return err
			}

			status, err := c.app.DaemonStatus(cmd.Context(), root)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !status.Running {
				_, _ = fmt.Fprintln(w, "daemon: not running")
				return nil
			}

			_, _ = fmt.Fprintf(w, "daemon: running (pid %d)\n", status.PID)
			_, _ = fmt.Fprintf(w, "  session:        %s\n", status.SessionID)
			_, _ = fmt.Fprintf(w, "  root:           %s\n", status.Root)
			_, _ = fmt.Fprintf(w, "  uptime:         %s\n", status.Uptime.Round(time.Second))
			_, _ = fmt.Fprintf(w, "  idle remaining: %s\n", status.IdleRemaining.Round(time.Second))
			_, _ = fmt.Fprintf(w, "  pending saves:  %d\n", status.PendingSaves)
			return nil
		},
	}
}

func (c *CLI) newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := c.workspace(".")
			if err != nil {
				return err
			}
			return c.app.StopDaemon(cmd.Context(), root)
		},
	}
}

func (c *CLI) newDaemonInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Drop the daemon's cached style configurations and lint engines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := c.workspace(".")
			if err != nil {
				return err
			}
			return c.app.InvalidateDaemon(cmd.Context(), root)
		},
	}
}
