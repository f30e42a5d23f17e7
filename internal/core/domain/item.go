package domain

import "path/filepath"

// WorkItem is one document the transforms run against.
// Path is its identity; Root is the workspace root the linter runs from.
type WorkItem struct {
	Path     string
	Root     string
	Language Language
}

// NewWorkItem builds a WorkItem for a file under root, deriving its language from the extension.
func NewWorkItem(root, path string) WorkItem {
	lang, _ := LanguageForPath(path)
	return WorkItem{
		Path:     path,
		Root:     root,
		Language: lang,
	}
}

// Key returns the identity used by caches and the debounce scheduler.
func (w WorkItem) Key() string {
	return w.Path
}

// Name returns the base name used in progress messages.
func (w WorkItem) Name() string {
	return filepath.Base(w.Path)
}

// Dir returns the directory used as fallback working directory when Root is unset.
func (w WorkItem) Dir() string {
	if w.Root != "" {
		return w.Root
	}
	return filepath.Dir(w.Path)
}

// String implements fmt.Stringer.
func (w WorkItem) String() string {
	return w.Path
}
