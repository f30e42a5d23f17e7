package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polish/internal/adapters/watcher"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/polish/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const eventTimeout = 5 * time.Second

func startWatcher(t *testing.T, root string) (*watcher.Watcher, <-chan ports.WatchEvent) {
	t.Helper()

	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, root))
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})

	events := make(chan ports.WatchEvent, 64)
	go func() {
		defer close(events)
		for ev := range w.Events() {
			events <- ev
		}
	}()
	return w, events
}

// waitFor returns the first event for path, failing after eventTimeout.
func waitFor(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	deadline := time.After(eventTimeout)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "watcher closed before event for %s", path)
			if ev.Path == path {
				return ev
			}
		case <-deadline:
			require.FailNow(t, "no event", "path %s", path)
		}
	}
}

func TestWatcher_ReportsConfigWrites(t *testing.T) {
	root := t.TempDir()
	config := filepath.Join(root, ".prettierrc")
	require.NoError(t, os.WriteFile(config, []byte("semi: true\n"), domain.PrivateFilePerm))

	_, events := startWatcher(t, root)

	require.NoError(t, os.WriteFile(config, []byte("semi: false\n"), domain.PrivateFilePerm))

	ev := waitFor(t, events, config)
	assert.Contains(t, []ports.WatchOp{ports.OpWrite, ports.OpCreate}, ev.Operation)
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	_, events := startWatcher(t, root)

	dir := filepath.Join(root, "packages", "ui")
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	waitFor(t, events, filepath.Join(root, "packages"))

	// Give the watcher a moment to register the nested directory.
	time.Sleep(100 * time.Millisecond)

	config := filepath.Join(dir, "eslint.config.js")
	require.NoError(t, os.WriteFile(config, []byte("export default []\n"), domain.PrivateFilePerm))
	waitFor(t, events, config)
}

func TestWatcher_ReportsRemovals(t *testing.T) {
	root := t.TempDir()
	config := filepath.Join(root, ".eslintrc.json")
	require.NoError(t, os.WriteFile(config, []byte("{}"), domain.PrivateFilePerm))

	_, events := startWatcher(t, root)

	require.NoError(t, os.Remove(config))

	ev := waitFor(t, events, config)
	assert.Equal(t, ports.OpRemove, ev.Operation)
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	root := t.TempDir()
	w, events := startWatcher(t, root)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(eventTimeout):
		require.FailNow(t, "events not closed after Stop")
	}
}
