// Package config loads workspace settings for polish.
package config

import (
	_ "embed"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/zerr"
)

// EnvPrefix prefixes every environment override, e.g. POLISH_FORMAT_ON_SAVE.
const EnvPrefix = "POLISH_"

const maxSettingsFileSize = 1 << 20

//go:embed defaults.yaml
var defaultsYAML []byte

// sections whose env keys map to nested settings: POLISH_LINTER_COMMAND -> linter.command.
var sections = []string{"formatter", "linter", "telemetry", "metrics"}

var rootMarkers = []string{domain.SettingsFileName, ".git", ".jj"}

// listKeys hold whitespace-separated lists when set from the environment.
var listKeys = []string{"formatter.command", "linter.command", "ignore"}

// Loader implements ports.SettingsLoader with koanf.
// Precedence, highest first: environment, <root>/.polish.yaml, built-in defaults.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the settings of the workspace rooted at root.
func (l *Loader) Load(root string) (domain.Settings, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return domain.Settings{}, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	path := filepath.Join(root, domain.SettingsFileName)
	content, err := readSettingsFile(path)
	if err != nil {
		return domain.Settings{}, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return domain.Settings{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
		}
	}

	if err := k.Load(l.envProvider(), nil); err != nil {
		return domain.Settings{}, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	var settings domain.Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return domain.Settings{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	if err := validate(settings); err != nil {
		return domain.Settings{}, zerr.With(err, "path", path)
	}

	return settings, nil
}

// readSettingsFile returns nil content when the file does not exist.
func readSettingsFile(path string) ([]byte, error) {
	//nolint:gosec // path is the workspace settings file
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(io.LimitReader(f, maxSettingsFileSize+1))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}
	if len(content) > maxSettingsFileSize {
		return nil, zerr.With(zerr.With(domain.ErrConfigReadFailed, "limit_bytes", maxSettingsFileSize), "path", path)
	}

	return content, nil
}

func (l *Loader) envProvider() *env.Env {
	return env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		k := envKey(key)
		if slices.Contains(listKeys, k) {
			return k, strings.Fields(value)
		}
		return k, value
	})
}

// envKey maps POLISH_LINTER_OUTPUT to linter.output and POLISH_FORMAT_ON_SAVE to format_on_save.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

func validate(s domain.Settings) error {
	switch s.Discovery {
	case domain.DiscoveryAll, domain.DiscoveryChanged:
	default:
		return zerr.With(domain.ErrInvalidDiscoveryMode, "discovery", string(s.Discovery))
	}

	for name, spec := range map[string]domain.CommandSpec{"formatter": s.Formatter, "linter": s.Linter} {
		switch spec.Output {
		case domain.OutputText, domain.OutputESLintJSON:
		default:
			return zerr.With(zerr.With(domain.ErrInvalidOutputFormat, "output", string(spec.Output)), "stage", name)
		}
	}

	switch s.Telemetry.Protocol {
	case "grpc", "http/protobuf":
	default:
		return zerr.With(domain.ErrInvalidTelemetryProtocol, "protocol", s.Telemetry.Protocol)
	}

	return nil
}

// FindRoot walks up from start to the nearest directory holding a settings
// file or a VCS marker. It returns start when neither is found.
func FindRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for dir := abs; ; {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}
