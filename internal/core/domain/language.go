package domain

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Language identifies the content type of a document, as reported by editors.
type Language string

// Recognized languages.
const (
	LanguageJavaScript      Language = "javascript"
	LanguageTypeScript      Language = "typescript"
	LanguageJavaScriptReact Language = "javascriptreact"
	LanguageTypeScriptReact Language = "typescriptreact"
	LanguageJSON            Language = "json"
	LanguageJSONC           Language = "jsonc"
)

// SaveHookLanguages is the closed set of languages eligible for format on save.
var SaveHookLanguages = []Language{
	LanguageJavaScript,
	LanguageTypeScript,
	LanguageJavaScriptReact,
	LanguageTypeScriptReact,
	LanguageJSON,
	LanguageJSONC,
}

// SupportedExtensions is the closed set of file extensions picked up by discovery.
var SupportedExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".json", ".jsonc"}

var extensionLanguages = map[string]Language{
	".js":    LanguageJavaScript,
	".jsx":   LanguageJavaScriptReact,
	".ts":    LanguageTypeScript,
	".tsx":   LanguageTypeScriptReact,
	".json":  LanguageJSON,
	".jsonc": LanguageJSONC,
}

// ConfigArtifactPatterns match the base names of formatter and linter configuration files.
// The workspace settings file is included since it selects the transform commands.
var ConfigArtifactPatterns = []string{
	".prettierrc*",
	".eslintrc*",
	"eslint.config.*",
	"prettier.config.*",
	SettingsFileName,
}

// EligibleForSave reports whether documents of this language are transformed on save.
func (l Language) EligibleForSave() bool {
	return slices.Contains(SaveHookLanguages, l)
}

// LanguageForPath maps a file path to its language by extension.
// It returns false when the extension is not supported.
func LanguageForPath(p string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(p))]
	return lang, ok
}

// IsSupportedPath reports whether discovery should pick up the file.
func IsSupportedPath(p string) bool {
	_, ok := LanguageForPath(p)
	return ok
}

// IsConfigArtifact reports whether the path names a formatter or linter configuration file.
func IsConfigArtifact(p string) bool {
	base := filepath.Base(p)
	for _, pattern := range ConfigArtifactPatterns {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
