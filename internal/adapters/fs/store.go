package fs

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DocumentStore = (*Store)(nil)

// Store reads and writes documents on disk.
// Persisting text identical to the file's content is a no-op, so
// unchanged files keep their modification time.
type Store struct {
	logger ports.Logger
}

// NewStore creates a new Store.
func NewStore(logger ports.Logger) *Store {
	return &Store{logger: logger}
}

// Read returns the file's content.
func (s *Store) Read(_ context.Context, item domain.WorkItem) (string, error) {
	content, err := os.ReadFile(item.Path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrDocumentReadFailed.Error()), "path", item.Path)
	}
	return string(content), nil
}

// Persist replaces the file's content atomically, keeping its permissions.
func (s *Store) Persist(ctx context.Context, item domain.WorkItem, text string) error {
	if err := ctx.Err(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDocumentWriteFailed.Error()), "path", item.Path)
	}

	mode := os.FileMode(domain.FilePerm)
	if info, err := os.Stat(item.Path); err == nil {
		mode = info.Mode().Perm()
		if current, err := ComputeFileHash(item.Path); err == nil && current == HashText(text) {
			s.logger.Debug("unchanged " + item.Path)
			return nil
		}
	}

	if err := writeAtomic(item.Path, text, mode); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDocumentWriteFailed.Error()), "path", item.Path)
	}
	return nil
}

func writeAtomic(path, text string, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".polish-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
