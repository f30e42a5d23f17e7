// Package commands implements the CLI commands for polish.
package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/polish/internal/adapters/config"
	"go.trai.ch/polish/internal/app"
	"go.trai.ch/polish/internal/build"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
)

// CLI represents the command line interface for polish.
type CLI struct {
	app     Application
	logs    LogControl
	rootCmd *cobra.Command

	root    string
	verbose bool
	json    bool
}

// Application represents the application logic interface.
type Application interface {
	EnableTelemetry(ctx context.Context, root string) error
	Format(ctx context.Context, root, path string) error
	Sweep(ctx context.Context, root string, opts app.SweepOptions) (domain.SweepReport, error)
	ForwardSave(ctx context.Context, req domain.SaveRequest) domain.SaveResult
	ServeDaemon(ctx context.Context, root string) error
	DaemonStatus(ctx context.Context, root string) (*ports.DaemonStatus, error)
	StopDaemon(ctx context.Context, root string) error
	InvalidateDaemon(ctx context.Context, root string) error
}

// LogControl adjusts the logger from global flags.
type LogControl interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app. logs may be nil.
func New(a Application, logs LogControl) *CLI {
	rootCmd := &cobra.Command{
		Use:           "polish",
		Short:         "Format and lint-fix JavaScript, TypeScript and JSON documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logs:    logs,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.root, "root", "", "Workspace root (default: nearest directory with .polish.yaml, .git or .jj)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Show debug output")
	flags.BoolVar(&c.json, "json", false, "Log as JSON")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.logs != nil {
			c.logs.SetVerbose(c.verbose)
			c.logs.SetJSON(c.json)
		}
	}

	rootCmd.AddCommand(c.newFormatCmd())
	rootCmd.AddCommand(c.newSweepCmd())
	rootCmd.AddCommand(c.newHookCmd())
	rootCmd.AddCommand(c.newDaemonCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the input stream for the root command. Used for testing.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}

// workspace returns the --root flag, or the root discovered from start.
func (c *CLI) workspace(start string) (string, error) {
	if c.root != "" {
		return filepath.Abs(c.root)
	}
	return config.FindRoot(start), nil
}

// prepare resolves the workspace and enables span export for it.
func (c *CLI) prepare(cmd *cobra.Command, start string) (string, error) {
	root, err := c.workspace(start)
	if err != nil {
		return "", err
	}
	if err := c.app.EnableTelemetry(cmd.Context(), root); err != nil {
		return "", err
	}
	return root, nil
}
