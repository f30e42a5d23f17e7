package domain

import "strings"

// DiscoveryMode selects how the bulk sweep enumerates candidate files.
type DiscoveryMode string

const (
	// DiscoveryAll walks the workspace for every supported file.
	DiscoveryAll DiscoveryMode = "all"
	// DiscoveryChanged limits the sweep to files modified in the git worktree.
	DiscoveryChanged DiscoveryMode = "changed"
)

// FileToken is substituted with the document path in transform commands.
const FileToken = "{file}"

// OutputFormat describes how a transform command reports its result on stdout.
type OutputFormat string

const (
	// OutputText means stdout is the transformed document.
	OutputText OutputFormat = "text"
	// OutputESLintJSON means stdout is an ESLint JSON report carrying the fixed source.
	OutputESLintJSON OutputFormat = "eslint-json"
)

// CommandSpec is an external transform command.
// The document text is written to stdin and the result is read from stdout.
type CommandSpec struct {
	Command []string     `koanf:"command"`
	Output  OutputFormat `koanf:"output"`
	// ConfigFlag, when set, passes the resolved style configuration path to the command.
	// When empty, the parsed style options are passed as individual flags instead.
	ConfigFlag string `koanf:"config_flag"`
}

// Args returns the command arguments with FileToken replaced by path.
func (c CommandSpec) Args(path string) []string {
	args := make([]string, len(c.Command))
	for i, arg := range c.Command {
		args[i] = strings.ReplaceAll(arg, FileToken, path)
	}
	return args
}

// TelemetrySettings configures span export. An empty Endpoint disables export.
type TelemetrySettings struct {
	Endpoint string `koanf:"endpoint"`
	// Protocol is "grpc" or "http/protobuf".
	Protocol string `koanf:"protocol"`
	Insecure bool   `koanf:"insecure"`
}

// MetricsSettings configures the daemon's Prometheus endpoint. An empty Listen disables it.
type MetricsSettings struct {
	Listen string `koanf:"listen"`
}

// Settings holds the workspace configuration for polish.
type Settings struct {
	Enable       bool              `koanf:"enable"`
	FormatOnSave bool              `koanf:"format_on_save"`
	Discovery    DiscoveryMode     `koanf:"discovery"`
	Formatter    CommandSpec       `koanf:"formatter"`
	Linter       CommandSpec       `koanf:"linter"`
	Ignore       []string          `koanf:"ignore"`
	Telemetry    TelemetrySettings `koanf:"telemetry"`
	Metrics      MetricsSettings   `koanf:"metrics"`
}

// DefaultSettings returns the settings used when no configuration is present.
func DefaultSettings() Settings {
	return Settings{
		Enable:       true,
		FormatOnSave: false,
		Discovery:    DiscoveryAll,
		Formatter: CommandSpec{
			Command:    []string{"prettier", "--stdin-filepath", FileToken},
			Output:     OutputText,
			ConfigFlag: "--config",
		},
		Linter: CommandSpec{
			Command: []string{
				"eslint", "--fix-dry-run", "--format", "json",
				"--stdin", "--stdin-filename", FileToken,
			},
			Output: OutputESLintJSON,
		},
		Ignore:    []string{"node_modules"},
		Telemetry: TelemetrySettings{Protocol: "grpc"},
	}
}
