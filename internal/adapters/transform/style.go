package transform

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// styleConfigNames are searched in each directory, first match wins.
var styleConfigNames = []string{
	".prettierrc",
	".prettierrc.json",
	".prettierrc.yaml",
	".prettierrc.yml",
	".prettierrc.json5",
	".prettierrc.toml",
	".prettierrc.js",
	".prettierrc.cjs",
	".prettierrc.mjs",
	"prettier.config.js",
	"prettier.config.cjs",
	"prettier.config.mjs",
}

// StyleConfig is the formatter configuration that applies to a document.
type StyleConfig struct {
	// Path is the configuration file.
	Path string
	// Options holds the parsed settings. It is nil for script configs,
	// which only the formatter itself can evaluate.
	Options map[string]any
}

// Flags renders the scalar options as formatter flags in key order:
// tabWidth: 4 becomes --tab-width=4 and semi: false becomes --no-semi.
// Nested options such as overrides only take effect through the file itself.
func (c StyleConfig) Flags() []string {
	var flags []string
	for _, key := range slices.Sorted(maps.Keys(c.Options)) {
		name := kebab(key)
		switch v := c.Options[key].(type) {
		case bool:
			if v {
				flags = append(flags, "--"+name)
			} else {
				flags = append(flags, "--no-"+name)
			}
		case string, int, int64, uint64, float64:
			flags = append(flags, fmt.Sprintf("--%s=%v", name, v))
		}
	}
	return flags
}

func kebab(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ResolveStyle finds the style configuration nearest to path, searching
// upwards and stopping at root. found is false when no file applies.
// A file whose options cannot be parsed is still returned, without
// options, together with the parse error.
func ResolveStyle(path, root string) (cfg StyleConfig, found bool, err error) {
	dir := filepath.Dir(path)
	root = filepath.Clean(root)

	for {
		for _, name := range styleConfigNames {
			candidate := filepath.Join(dir, name)
			info, statErr := os.Stat(candidate)
			if statErr != nil || info.IsDir() {
				continue
			}

			options, parseErr := parseStyleFile(candidate)
			if parseErr != nil {
				return StyleConfig{Path: candidate}, true, zerr.With(
					zerr.Wrap(parseErr, domain.ErrConfigResolutionFailed.Error()), "config", candidate)
			}
			return StyleConfig{Path: candidate, Options: options}, true, nil
		}

		if root != "" && dir == root {
			return StyleConfig{}, false, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return StyleConfig{}, false, nil
		}
		dir = parent
	}
}

func parseStyleFile(path string) (map[string]any, error) {
	ext := filepath.Ext(path)
	switch ext {
	case ".js", ".cjs", ".mjs", ".json5":
		return nil, nil
	}

	//nolint:gosec // path is a discovered style config
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	options := make(map[string]any)
	switch ext {
	case ".toml":
		if _, err := toml.Decode(string(content), &options); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(content, &options); err != nil {
			return nil, err
		}
	default:
		// .prettierrc without extension is JSON or YAML; YAML accepts both.
		if strings.TrimSpace(string(content)) == "" {
			return options, nil
		}
		if err := yaml.Unmarshal(content, &options); err != nil {
			return nil, err
		}
	}
	return options, nil
}
