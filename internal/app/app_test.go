package app_test

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polish/internal/adapters/metrics"
	"go.trai.ch/polish/internal/adapters/telemetry"
	"go.trai.ch/polish/internal/app"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/polish/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type harness struct {
	app       *app.App
	settings  *mocks.MockSettingsLoader
	store     *mocks.MockDocumentStore
	transform *mocks.MockTransformer
	walker    *mocks.MockDiscoverer
	changed   *mocks.MockDiscoverer
	confirmer *mocks.MockConfirmer
	watcher   *mocks.MockWatcher
	connector *mocks.MockDaemonConnector
	progress  *recordingProgress
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	h := &harness{
		settings:  mocks.NewMockSettingsLoader(ctrl),
		store:     mocks.NewMockDocumentStore(ctrl),
		transform: mocks.NewMockTransformer(ctrl),
		walker:    mocks.NewMockDiscoverer(ctrl),
		changed:   mocks.NewMockDiscoverer(ctrl),
		confirmer: mocks.NewMockConfirmer(ctrl),
		watcher:   mocks.NewMockWatcher(ctrl),
		connector: mocks.NewMockDaemonConnector(ctrl),
		progress:  &recordingProgress{},
	}
	h.app = app.New(
		log,
		telemetry.NewNoOpTracer(),
		h.settings,
		h.store,
		h.transform,
		h.walker,
		h.changed,
		metrics.NoOp{},
		h.watcher,
		h.connector,
	).WithConfirmer(h.confirmer).WithProgress(h.progress)
	return h
}

func (h *harness) withSettings(mutate func(*domain.Settings)) {
	s := domain.DefaultSettings()
	if mutate != nil {
		mutate(&s)
	}
	h.settings.EXPECT().Load(gomock.Any()).Return(s, nil).AnyTimes()
}

type recordingProgress struct {
	mu      sync.Mutex
	title   string
	reports []string
	total   float64
	done    bool
}

func (p *recordingProgress) Begin(title string, _ int) ports.ProgressSink {
	p.title = title
	return p
}

func (p *recordingProgress) Report(message string, incrementPct float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, message)
	p.total += incrementPct
}

func (p *recordingProgress) Done() {
	p.done = true
}

func items(root string, names ...string) []domain.WorkItem {
	out := make([]domain.WorkItem, 0, len(names))
	for _, n := range names {
		out = append(out, domain.NewWorkItem(root, filepath.Join(root, n)))
	}
	return out
}

func TestApp_Sweep_AllSucceeded(t *testing.T) {
	h := newHarness(t)
	h.withSettings(nil)
	root := t.TempDir()
	found := items(root, "a.ts", "b.tsx", "c.json")

	h.walker.EXPECT().Discover(gomock.Any(), root, gomock.Any()).Return(found, nil)
	h.confirmer.EXPECT().Confirm(gomock.Any(), "Format 3 file(s) in workspace?").Return(true, nil)
	h.store.EXPECT().Read(gomock.Any(), gomock.Any()).Return("src", nil).Times(3)
	h.transform.EXPECT().Transform(gomock.Any(), "src", gomock.Any()).Return("out", nil).Times(3)
	h.store.EXPECT().Persist(gomock.Any(), gomock.Any(), "out").Return(nil).Times(3)

	report, err := h.app.Sweep(context.Background(), root, app.SweepOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeAllSucceeded, report.Outcome)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, "Successfully formatted 3 file(s)", report.Message())
	assert.Equal(t, "Formatting 3 file(s)", h.progress.title)
	assert.Len(t, h.progress.reports, 3)
	assert.InDelta(t, 100, h.progress.total, 0.001)
	assert.True(t, h.progress.done)
}

func TestApp_Sweep_PartialFailure(t *testing.T) {
	h := newHarness(t)
	h.withSettings(nil)
	root := t.TempDir()
	found := items(root, "a.ts", "bad.ts", "c.ts")

	h.walker.EXPECT().Discover(gomock.Any(), root, gomock.Any()).Return(found, nil)
	h.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true, nil)
	h.store.EXPECT().Read(gomock.Any(), gomock.Any()).Return("src", nil).Times(3)
	h.transform.EXPECT().Transform(gomock.Any(), "src", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, item domain.WorkItem) (string, error) {
			if item.Name() == "bad.ts" {
				return "", domain.ErrFormatterFailed
			}
			return "out", nil
		}).Times(3)
	h.store.EXPECT().Persist(gomock.Any(), gomock.Any(), "out").Return(nil).Times(2)

	report, err := h.app.Sweep(context.Background(), root, app.SweepOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomePartialFailure, report.Outcome)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "Formatted 2 file(s), 1 error(s). Check logs for details.", report.Message())
}

func TestApp_Sweep_NoneFound(t *testing.T) {
	h := newHarness(t)
	h.withSettings(nil)
	root := t.TempDir()

	h.walker.EXPECT().Discover(gomock.Any(), root, gomock.Any()).Return(nil, nil)

	report, err := h.app.Sweep(context.Background(), root, app.SweepOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoneFound, report.Outcome)
	assert.Equal(t, "No supported files found to format", report.Message())
}

func TestApp_Sweep_ChangedMode(t *testing.T) {
	h := newHarness(t)
	h.withSettings(func(s *domain.Settings) { s.Discovery = domain.DiscoveryChanged })
	root := t.TempDir()

	h.changed.EXPECT().Discover(gomock.Any(), root, gomock.Any()).Return(nil, nil)

	report, err := h.app.Sweep(context.Background(), root, app.SweepOptions{})
	require.NoError(t, err)
	assert.Equal(t, "No changed files found to format", report.Message())
}

func TestApp_Sweep_Declined(t *testing.T) {
	h := newHarness(t)
	h.withSettings(func(s *domain.Settings) { s.Discovery = domain.DiscoveryChanged })
	root := t.TempDir()

	h.changed.EXPECT().Discover(gomock.Any(), root, gomock.Any()).Return(items(root, "a.ts"), nil)
	h.confirmer.EXPECT().Confirm(gomock.Any(), "Format 1 changed file(s)?").Return(false, nil)

	report, err := h.app.Sweep(context.Background(), root, app.SweepOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDeclined, report.Outcome)
	assert.Empty(t, h.progress.reports)
}

func TestApp_Sweep_YesSkipsPrompt(t *testing.T) {
	h := newHarness(t)
	h.withSettings(nil)
	root := t.TempDir()

	h.walker.EXPECT().Discover(gomock.Any(), root, gomock.Any()).Return(items(root, "a.ts"), nil)
	h.store.EXPECT().Read(gomock.Any(), gomock.Any()).Return("src", nil)
	h.transform.EXPECT().Transform(gomock.Any(), "src", gomock.Any()).Return("src", nil)
	h.store.EXPECT().Persist(gomock.Any(), gomock.Any(), "src").Return(nil)

	report, err := h.app.Sweep(context.Background(), root, app.SweepOptions{Yes: true})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAllSucceeded, report.Outcome)
}

func TestApp_Sweep_Disabled(t *testing.T) {
	h := newHarness(t)
	h.withSettings(func(s *domain.Settings) { s.Enable = false })

	report, err := h.app.Sweep(context.Background(), t.TempDir(), app.SweepOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDisabled, report.Outcome)
	assert.True(t, report.Warning())
}

func TestApp_Sweep_NoWorkspace(t *testing.T) {
	h := newHarness(t)
	h.withSettings(nil)

	report, err := h.app.Sweep(context.Background(), filepath.Join(t.TempDir(), "missing"), app.SweepOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoWorkspace, report.Outcome)
}

func TestApp_Sweep_DiscoveryError(t *testing.T) {
	h := newHarness(t)
	h.withSettings(func(s *domain.Settings) { s.Discovery = domain.DiscoveryChanged })
	root := t.TempDir()

	h.changed.EXPECT().Discover(gomock.Any(), root, gomock.Any()).Return(nil, domain.ErrNotGitRepository)

	_, err := h.app.Sweep(context.Background(), root, app.SweepOptions{})
	require.ErrorIs(t, err, domain.ErrNotGitRepository)
}

func TestApp_Format(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	path := filepath.Join(root, "a.ts")

	item := domain.NewWorkItem(root, path)
	h.store.EXPECT().Read(gomock.Any(), item).Return("let a=1", nil)
	h.transform.EXPECT().Transform(gomock.Any(), "let a=1", item).Return("let a = 1;\n", nil)
	h.store.EXPECT().Persist(gomock.Any(), item, "let a = 1;\n").Return(nil)

	require.NoError(t, h.app.Format(context.Background(), root, path))
}

func TestApp_Format_FailureWritesNothing(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	path := filepath.Join(root, "a.ts")

	h.store.EXPECT().Read(gomock.Any(), gomock.Any()).Return("let a=1", nil)
	h.transform.EXPECT().Transform(gomock.Any(), gomock.Any(), gomock.Any()).Return("", domain.ErrFormatterFailed)
	h.store.EXPECT().Persist(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := h.app.Format(context.Background(), root, path)
	require.ErrorContains(t, err, domain.ErrFormatFailed.Error())
	require.ErrorContains(t, err, domain.ErrFormatterFailed.Error())
}

func TestApp_Format_Unsupported(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()

	err := h.app.Format(context.Background(), root, filepath.Join(root, "README.md"))
	require.ErrorContains(t, err, domain.ErrUnsupportedFile.Error())
}

func saveRequest(root string, text string) domain.SaveRequest {
	return domain.SaveRequest{
		Path:     filepath.Join(root, "a.ts"),
		Root:     root,
		Language: domain.LanguageTypeScript,
		Text:     text,
	}
}

func TestApp_WillSave_Debounced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.withSettings(func(s *domain.Settings) { s.FormatOnSave = true })

		start := time.Now()
		var transformedAt time.Duration
		h.transform.EXPECT().Transform(gomock.Any(), "v3", gomock.Any()).
			DoAndReturn(func(context.Context, string, domain.WorkItem) (string, error) {
				transformedAt = time.Since(start)
				return "v3 formatted", nil
			}).Times(1)

		results := make([]domain.SaveResult, 3)
		var wg sync.WaitGroup
		for i, text := range []string{"v1", "v2", "v3"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = h.app.WillSave(context.Background(), saveRequest("/ws", text))
			}()
			synctest.Wait()
			if i < 2 {
				time.Sleep(100 * time.Millisecond)
			}
		}
		wg.Wait()

		assert.Equal(t, 500*time.Millisecond, transformedAt)
		assert.Equal(t, domain.SaveResult{Text: "v1"}, results[0])
		assert.Equal(t, domain.SaveResult{Text: "v2"}, results[1])
		assert.Equal(t, domain.SaveResult{Text: "v3 formatted", Applied: true}, results[2])
		assert.Zero(t, h.app.PendingSaves())
	})
}

func TestApp_WillSave_FailureReturnsOriginal(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.withSettings(func(s *domain.Settings) { s.FormatOnSave = true })

		h.transform.EXPECT().Transform(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", domain.ErrFormatterFailed)

		res := h.app.WillSave(context.Background(), saveRequest("/ws", "broken"))
		assert.Equal(t, domain.SaveResult{Text: "broken"}, res)
	})
}

func TestApp_WillSave_CallerGoneSkipsTransform(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.withSettings(func(s *domain.Settings) { s.FormatOnSave = true })

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan domain.SaveResult, 1)
		go func() {
			done <- h.app.WillSave(ctx, saveRequest("/ws", "draft"))
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()
		assert.Equal(t, domain.SaveResult{Text: "draft"}, <-done)

		// The timer still fires; the transform must not run for a caller that left.
		time.Sleep(domain.SaveDebounceDelay)
		synctest.Wait()
		assert.Zero(t, h.app.PendingSaves())
	})
}

func TestApp_WillSave_Skipped(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.Settings)
		language domain.Language
	}{
		{name: "format on save off", mutate: func(s *domain.Settings) { s.FormatOnSave = false }, language: domain.LanguageTypeScript},
		{name: "disabled", mutate: func(s *domain.Settings) { s.Enable = false; s.FormatOnSave = true }, language: domain.LanguageTypeScript},
		{name: "ineligible language", mutate: func(s *domain.Settings) { s.FormatOnSave = true }, language: "markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.withSettings(tt.mutate)

			req := saveRequest("/ws", "text")
			req.Language = tt.language
			res := h.app.WillSave(context.Background(), req)

			assert.Equal(t, domain.SaveResult{Text: "text"}, res)
			assert.Zero(t, h.app.PendingSaves())
		})
	}
}

func TestApp_WillSave_CancelledOnClose(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.withSettings(func(s *domain.Settings) { s.FormatOnSave = true })

		var res domain.SaveResult
		done := make(chan struct{})
		go func() {
			defer close(done)
			res = h.app.WillSave(context.Background(), saveRequest("/ws", "text"))
		}()
		synctest.Wait()
		assert.Equal(t, 1, h.app.PendingSaves())

		require.NoError(t, h.app.Close(context.Background()))
		<-done
		assert.Equal(t, domain.SaveResult{Text: "text"}, res)
	})
}

type countingCache struct {
	mu    sync.Mutex
	count int
}

func (c *countingCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func eventSeq(events ...ports.WatchEvent) iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for _, e := range events {
			if !yield(e) {
				return
			}
		}
	}
}

func TestApp_WatchConfig_CoalescesInvalidations(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		cache := &countingCache{}
		h.app.WithCaches(cache)

		h.watcher.EXPECT().Start(gomock.Any(), "/ws").Return(nil)
		h.watcher.EXPECT().Events().Return(eventSeq(
			ports.WatchEvent{Path: "/ws/.prettierrc", Operation: ports.OpWrite},
			ports.WatchEvent{Path: "/ws/src/a.ts", Operation: ports.OpWrite},
			ports.WatchEvent{Path: "/ws/eslint.config.js", Operation: ports.OpCreate},
		))
		h.watcher.EXPECT().Stop().Return(nil)

		require.NoError(t, h.app.WatchConfig(context.Background(), "/ws"))
		assert.Zero(t, cache.invalidations())

		time.Sleep(domain.ConfigDebounceDelay)
		synctest.Wait()
		assert.Equal(t, 1, cache.invalidations())
	})
}

func TestApp_WatchConfig_StartError(t *testing.T) {
	h := newHarness(t)
	h.watcher.EXPECT().Start(gomock.Any(), "/ws").Return(domain.ErrWatcherFailed)

	err := h.app.WatchConfig(context.Background(), "/ws")
	require.ErrorIs(t, err, domain.ErrWatcherFailed)
}

func TestApp_InvalidateCaches(t *testing.T) {
	h := newHarness(t)
	a, b := &countingCache{}, &countingCache{}
	h.app.WithCaches(a, b)

	h.app.InvalidateCaches()

	assert.Equal(t, 1, a.invalidations())
	assert.Equal(t, 1, b.invalidations())
}

func TestApp_ForwardSave(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newHarness(t)
	h.withSettings(func(s *domain.Settings) { s.FormatOnSave = true })
	client := mocks.NewMockDaemonClient(ctrl)
	req := saveRequest("/ws", "text")

	h.connector.EXPECT().Connect(gomock.Any(), "/ws").Return(client, nil)
	client.EXPECT().WillSave(gomock.Any(), req).Return(domain.SaveResult{Text: "formatted", Applied: true}, nil)
	client.EXPECT().Close().Return(nil)

	res := h.app.ForwardSave(context.Background(), req)
	assert.Equal(t, domain.SaveResult{Text: "formatted", Applied: true}, res)
}

func TestApp_ForwardSave_DaemonUnavailable(t *testing.T) {
	h := newHarness(t)
	h.withSettings(func(s *domain.Settings) { s.FormatOnSave = true })
	req := saveRequest("/ws", "text")

	h.connector.EXPECT().Connect(gomock.Any(), "/ws").Return(nil, domain.ErrDaemonSpawnFailed)

	res := h.app.ForwardSave(context.Background(), req)
	assert.Equal(t, domain.SaveResult{Text: "text"}, res)
}

func TestApp_ForwardSave_SkippedLocally(t *testing.T) {
	h := newHarness(t)
	h.withSettings(nil)

	res := h.app.ForwardSave(context.Background(), saveRequest("/ws", "text"))
	assert.Equal(t, domain.SaveResult{Text: "text"}, res)
}

func TestApp_DaemonStatus_NotRunning(t *testing.T) {
	h := newHarness(t)
	h.connector.EXPECT().Dial(gomock.Any(), "/ws").Return(nil, domain.ErrDaemonUnavailable)

	status, err := h.app.DaemonStatus(context.Background(), "/ws")
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestApp_DaemonStatus_Running(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newHarness(t)
	client := mocks.NewMockDaemonClient(ctrl)

	h.connector.EXPECT().Dial(gomock.Any(), "/ws").Return(client, nil)
	client.EXPECT().Status(gomock.Any()).Return(&ports.DaemonStatus{Running: true, PID: 42}, nil)
	client.EXPECT().Close().Return(nil)

	status, err := h.app.DaemonStatus(context.Background(), "/ws")
	require.NoError(t, err)
	assert.Equal(t, 42, status.PID)
}

func TestApp_StopDaemon(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newHarness(t)
	client := mocks.NewMockDaemonClient(ctrl)

	h.connector.EXPECT().Dial(gomock.Any(), "/ws").Return(client, nil)
	client.EXPECT().Shutdown(gomock.Any()).Return(nil)
	client.EXPECT().Close().Return(nil)

	require.NoError(t, h.app.StopDaemon(context.Background(), "/ws"))
}

func TestApp_StopDaemon_NotRunning(t *testing.T) {
	h := newHarness(t)
	h.connector.EXPECT().Dial(gomock.Any(), "/ws").Return(nil, domain.ErrDaemonUnavailable)

	err := h.app.StopDaemon(context.Background(), "/ws")
	require.Error(t, err)
}

func TestApp_EnableTelemetry_Disabled(t *testing.T) {
	h := newHarness(t)
	h.withSettings(nil)

	require.NoError(t, h.app.EnableTelemetry(context.Background(), "/ws"))
	require.NoError(t, h.app.Close(context.Background()))
}

func TestApp_ServeDaemon_ShutsDownWithContext(t *testing.T) {
	h := newHarness(t)
	h.withSettings(nil)
	root, err := os.MkdirTemp("", "polish-app")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(root) })

	events := make(chan struct{})
	h.watcher.EXPECT().Start(gomock.Any(), root).Return(nil)
	h.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(func(ports.WatchEvent) bool) { <-events }))
	h.watcher.EXPECT().Stop().Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.app.ServeDaemon(ctx, root) }()

	require.Eventually(t, func() bool {
		_, statErr := os.Stat(filepath.Join(root, domain.DefaultDaemonSocketPath()))
		return statErr == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	close(events)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	_, statErr := os.Stat(filepath.Join(root, domain.DefaultDaemonSocketPath()))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}
