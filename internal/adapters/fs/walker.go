// Package fs provides file system adapters for discovering, reading and
// persisting documents.
package fs

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"

	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Discoverer = (*Walker)(nil)

// skippedDirs are never descended into.
var skippedDirs = []string{".git", ".jj", "node_modules", domain.PolishDirName}

// Walker discovers documents by walking the workspace tree.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// Discover returns every supported file under root in lexical order.
func (w *Walker) Discover(ctx context.Context, root string, ignore []string) ([]domain.WorkItem, error) {
	var items []domain.WorkItem
	var walkErr error

	for path, err := range w.WalkFiles(root, ignore) {
		if err != nil {
			walkErr = err
			break
		}
		if ctx.Err() != nil {
			walkErr = ctx.Err()
			break
		}
		if domain.IsSupportedPath(path) {
			items = append(items, domain.NewWorkItem(root, path))
		}
	}

	if walkErr != nil {
		return nil, zerr.With(zerr.Wrap(walkErr, domain.ErrDiscoveryFailed.Error()), "root", root)
	}
	return items, nil
}

// WalkFiles yields every file below root, skipping VCS metadata, dependency
// folders and entries whose base name matches an ignore pattern.
// Walk errors are yielded once and end the sequence.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root && skip(d, ignores) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

func skip(d fs.DirEntry, ignores []string) bool {
	name := d.Name()

	if d.IsDir() && slices.Contains(skippedDirs, name) {
		return true
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
