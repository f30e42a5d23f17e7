// Package git discovers documents modified in a git worktree.
package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Discoverer = (*ChangedFiles)(nil)

// ChangedFiles discovers supported files that are modified, added or
// untracked in the worktree containing the workspace root.
type ChangedFiles struct{}

// NewChangedFiles creates a new ChangedFiles discoverer.
func NewChangedFiles() *ChangedFiles {
	return &ChangedFiles{}
}

// Discover returns the changed files under root in lexical order.
// Deleted files are skipped. Untracked files honor .gitignore.
func (c *ChangedFiles) Discover(ctx context.Context, root string, ignore []string) ([]domain.WorkItem, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, zerr.With(domain.ErrNotGitRepository, "root", root)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDiscoveryFailed.Error()), "root", root)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDiscoveryFailed.Error()), "root", root)
	}

	status, err := wt.StatusWithOptions(git.StatusOptions{Strategy: git.Preload})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDiscoveryFailed.Error()), "root", root)
	}
	if err := ctx.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDiscoveryFailed.Error()), "root", root)
	}

	top := wt.Filesystem.Root()
	var paths []string
	for rel, st := range status {
		if !changed(st) {
			continue
		}

		abs := filepath.Join(top, filepath.FromSlash(rel))
		within, err := filepath.Rel(root, abs)
		if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
			continue
		}
		if !domain.IsSupportedPath(abs) || ignored(within, ignore) {
			continue
		}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		paths = append(paths, abs)
	}

	slices.Sort(paths)

	items := make([]domain.WorkItem, 0, len(paths))
	for _, p := range paths {
		items = append(items, domain.NewWorkItem(root, p))
	}
	return items, nil
}

func changed(st *git.FileStatus) bool {
	if st.Worktree == git.Deleted || st.Staging == git.Deleted {
		return false
	}
	return st.Worktree != git.Unmodified || st.Staging != git.Unmodified
}

// ignored reports whether any segment of rel matches an ignore pattern.
func ignored(rel string, patterns []string) bool {
	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		if segment == "node_modules" {
			return true
		}
		for _, pattern := range patterns {
			if ok, _ := filepath.Match(pattern, segment); ok {
				return true
			}
		}
	}
	return false
}
