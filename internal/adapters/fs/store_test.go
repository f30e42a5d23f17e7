package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polish/internal/adapters/fs"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestStore_ReadPersist(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("let a=1"), 0o640))
	item := domain.NewWorkItem(root, path)

	store := fs.NewStore(mocks.NewMockLogger(gomock.NewController(t)))

	text, err := store.Read(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "let a=1", text)

	require.NoError(t, store.Persist(context.Background(), item, "let a = 1;\n"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "let a = 1;\n", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestStore_PersistUnchangedSkipsWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("same"), domain.FilePerm))
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug("unchanged " + path)

	err := fs.NewStore(logger).Persist(context.Background(), domain.NewWorkItem(root, path), "same")

	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))
}

func TestStore_ReadMissing(t *testing.T) {
	store := fs.NewStore(mocks.NewMockLogger(gomock.NewController(t)))

	_, err := store.Read(context.Background(), domain.NewWorkItem("", filepath.Join(t.TempDir(), "nope.ts")))

	require.ErrorContains(t, err, domain.ErrDocumentReadFailed.Error())
}

func TestStore_PersistCancelled(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.ts")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fs.NewStore(mocks.NewMockLogger(gomock.NewController(t))).Persist(ctx, domain.NewWorkItem(root, path), "x")

	require.ErrorContains(t, err, domain.ErrDocumentWriteFailed.Error())
	assert.NoFileExists(t, path)
}

func TestHashText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), domain.PrivateFilePerm))

	got, err := fs.ComputeFileHash(path)

	require.NoError(t, err)
	assert.Equal(t, fs.HashText("hello"), got)
	assert.NotEqual(t, fs.HashText("hello!"), got)
}
