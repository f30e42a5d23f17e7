// Package app implements the application layer for polish.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/polish/internal/adapters/progress"
	"go.trai.ch/polish/internal/adapters/prompt"
	"go.trai.ch/polish/internal/adapters/telemetry"
	"go.trai.ch/polish/internal/adapters/tui"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/polish/internal/engine/batch"
	"go.trai.ch/polish/internal/engine/debounce"
	"go.trai.ch/zerr"
)

// configKey is the debounce key for cache invalidation after config edits.
const configKey = "config"

// Invalidator is a cache that can be dropped wholesale.
type Invalidator interface {
	InvalidateAll()
}

// App represents the main application logic.
type App struct {
	logger      ports.Logger
	tracer      ports.Tracer
	settings    ports.SettingsLoader
	store       ports.DocumentStore
	transformer ports.Transformer
	walker      ports.Discoverer
	changed     ports.Discoverer
	metrics     ports.Metrics
	watcher     ports.Watcher
	connector   ports.DaemonConnector

	exporter  ports.MetricsExporter
	caches    []Invalidator
	confirmer ports.Confirmer
	progress  ports.Progress
	telemetry *telemetry.Provider

	saves  *debounce.Scheduler
	config *debounce.Scheduler
}

// New creates a new App instance.
func New(
	log ports.Logger,
	tracer ports.Tracer,
	settings ports.SettingsLoader,
	store ports.DocumentStore,
	transformer ports.Transformer,
	walker ports.Discoverer,
	changed ports.Discoverer,
	metrics ports.Metrics,
	watcher ports.Watcher,
	connector ports.DaemonConnector,
) *App {
	return &App{
		logger:      log,
		tracer:      tracer,
		settings:    settings,
		store:       store,
		transformer: transformer,
		walker:      walker,
		changed:     changed,
		metrics:     metrics,
		watcher:     watcher,
		connector:   connector,
		saves:       debounce.NewScheduler(log),
		config:      debounce.NewScheduler(log),
	}
}

// WithCaches registers caches dropped by InvalidateCaches.
func (a *App) WithCaches(caches ...Invalidator) *App {
	a.caches = append(a.caches, caches...)
	return a
}

// WithExporter serves metrics while the daemon runs, when metrics.listen is set.
func (a *App) WithExporter(exporter ports.MetricsExporter) *App {
	a.exporter = exporter
	return a
}

// WithConfirmer replaces the interactive stdin prompt.
// This is primarily used for testing.
func (a *App) WithConfirmer(c ports.Confirmer) *App {
	a.confirmer = c
	return a
}

// WithProgress replaces the stderr progress renderer.
// This is primarily used for testing.
func (a *App) WithProgress(p ports.Progress) *App {
	a.progress = p
	return a
}

// loadSettings falls back to defaults when the workspace settings are unusable.
func (a *App) loadSettings(root string) domain.Settings {
	settings, err := a.settings.Load(root)
	if err != nil {
		a.logger.Warn("using default settings: " + err.Error())
		return domain.DefaultSettings()
	}
	return settings
}

// EnableTelemetry installs the span exporter configured for root.
// It is a no-op when no endpoint is configured.
func (a *App) EnableTelemetry(ctx context.Context, root string) error {
	cfg := a.loadSettings(root).Telemetry
	provider, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return err
	}
	if provider.Enabled() {
		a.logger.Debug("exporting spans to " + cfg.Endpoint)
	}
	a.telemetry = provider
	return nil
}

// Format transforms a single document in place. Nothing is written on failure.
func (a *App) Format(ctx context.Context, root, path string) (err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFormatFailed.Error()), "path", path)
	}

	item := domain.NewWorkItem(root, abs)
	if item.Language == "" {
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedFile, domain.ErrFormatFailed.Error()), "path", abs)
	}

	ctx, span := a.tracer.Start(ctx, "format")
	span.SetAttribute("path", abs)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if err := a.transformItem(ctx, item); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFormatFailed.Error()), "path", abs)
	}
	return nil
}

// transformItem reads, transforms and persists one document.
func (a *App) transformItem(ctx context.Context, item domain.WorkItem) error {
	text, err := a.store.Read(ctx, item)
	if err != nil {
		return err
	}

	out, err := a.transformer.Transform(ctx, text, item)
	if err != nil {
		return err
	}

	return a.store.Persist(ctx, item, out)
}

// SweepOptions configures Sweep.
type SweepOptions struct {
	// Yes skips the confirmation prompt.
	Yes bool
	// ProgressMode is "tui", "live", "linear" or "ci". Empty auto-detects.
	ProgressMode string
}

// Sweep transforms every candidate document of the workspace at root.
// Individual failures are counted, never returned. The error is reserved
// for discovery, the prompt and cancellation.
//
//nolint:cyclop // orchestration function
func (a *App) Sweep(ctx context.Context, root string, opts SweepOptions) (report domain.SweepReport, err error) {
	settings := a.loadSettings(root)
	report.Mode = settings.Discovery

	ctx, span := a.tracer.Start(ctx, "sweep")
	defer func() {
		span.SetAttribute("outcome", report.Outcome.String())
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		if err == nil {
			a.metrics.ObserveSweep(report)
		}
	}()

	if !settings.Enable {
		report.Outcome = domain.OutcomeDisabled
		return report, nil
	}

	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		report.Outcome = domain.OutcomeNoWorkspace
		return report, nil
	}

	discoverer := a.walker
	if settings.Discovery == domain.DiscoveryChanged {
		discoverer = a.changed
	}

	items, err := discoverer.Discover(ctx, root, settings.Ignore)
	if err != nil {
		return report, err
	}
	span.SetAttribute("items", len(items))

	if len(items) == 0 {
		report.Outcome = domain.OutcomeNoneFound
		return report, nil
	}

	ok, err := a.confirmerFor(opts.Yes).Confirm(ctx, domain.ConfirmPrompt(settings.Discovery, len(items)))
	if err != nil {
		return report, err
	}
	if !ok {
		report.Outcome = domain.OutcomeDeclined
		return report, nil
	}

	ctx, interrupt := context.WithCancel(ctx)
	defer interrupt()

	sink := a.progressFor(opts.ProgressMode, interrupt).Begin("Formatting "+strconv.Itoa(len(items))+" file(s)", len(items))
	summary := batch.Run(ctx, items, domain.BatchConcurrency, a.transformItem,
		batch.WithLogger(a.logger),
		batch.WithTracer(a.tracer),
		batch.WithProgress(func(p batch.Progress) {
			sink.Report(p.String(), 100/float64(p.Total))
		}),
	)
	sink.Done()

	report.Attempted = summary.Attempted
	report.Succeeded = summary.Succeeded
	report.Failed = summary.Failed
	report.Outcome = domain.OutcomeAllSucceeded
	if summary.Failed > 0 {
		report.Outcome = domain.OutcomePartialFailure
	}

	if summary.Skipped > 0 {
		return report, zerr.With(ctx.Err(), "skipped", summary.Skipped)
	}
	return report, nil
}

// confirmerFor answers the sweep prompt. yes bypasses any configured confirmer.
func (a *App) confirmerFor(yes bool) ports.Confirmer {
	switch {
	case yes:
		return prompt.AutoConfirm{}
	case a.confirmer != nil:
		return a.confirmer
	default:
		return prompt.NewConfirmer(os.Stdin, os.Stderr)
	}
}

// progressFor picks the renderer for the --progress flag. interrupt stops
// admitting further items when the dashboard sees ctrl+c.
func (a *App) progressFor(flag string, interrupt func()) ports.Progress {
	if a.progress != nil {
		return a.progress
	}
	mode := progress.ResolveMode(progress.DetectMode(), flag)
	if mode == progress.ModeTUI {
		return tui.NewRenderer(os.Stderr, interrupt)
	}
	return progress.NewRenderer(os.Stderr, mode)
}

// WillSave debounces save attempts per document and returns the text the
// editor should commit. Only the last attempt within the quiet period is
// transformed; every other outcome returns the original text.
func (a *App) WillSave(ctx context.Context, req domain.SaveRequest) domain.SaveResult {
	original := domain.SaveResult{Text: req.Text}

	if !a.saveEnabled(req) {
		a.metrics.ObserveSave(domain.SaveSkipped)
		return original
	}

	item := req.Item()
	var out string
	token := a.saves.Schedule(item.Key(), domain.SaveDebounceDelay, func() error {
		// The editor stopped waiting; its result would be discarded.
		if err := ctx.Err(); err != nil {
			return debounce.ErrCancelled
		}
		text, err := a.transformer.Transform(ctx, req.Text, item)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrSaveHookFailed.Error()), "path", item.Path)
		}
		out = text
		return nil
	})

	switch err := token.Wait(ctx); {
	case err == nil:
		a.metrics.ObserveSave(domain.SaveApplied)
		return domain.SaveResult{Text: out, Applied: true}
	case errors.Is(err, debounce.ErrSuperseded), errors.Is(err, debounce.ErrCancelled):
		a.metrics.ObserveSave(domain.SaveSuperseded)
	default:
		a.metrics.ObserveSave(domain.SaveFailed)
	}
	return original
}

// saveEnabled reports whether saves of req's document are transformed at all.
func (a *App) saveEnabled(req domain.SaveRequest) bool {
	settings := a.loadSettings(req.Root)
	return settings.Enable && settings.FormatOnSave && req.Language.EligibleForSave()
}

// PendingSaves reports the number of documents with a save waiting to fire.
func (a *App) PendingSaves() int {
	return a.saves.Pending()
}

// InvalidateCaches drops every resolved style configuration and lint engine.
func (a *App) InvalidateCaches() {
	for _, c := range a.caches {
		c.InvalidateAll()
	}
	a.logger.Debug("caches invalidated")
}

// WatchConfig invalidates the caches whenever a config artifact under root
// changes. Bursts of events collapse into one invalidation. It blocks until
// ctx is done.
func (a *App) WatchConfig(ctx context.Context, root string) error {
	if err := a.watcher.Start(ctx, root); err != nil {
		return err
	}
	defer func() { _ = a.watcher.Stop() }()

	for event := range a.watcher.Events() {
		if !domain.IsConfigArtifact(event.Path) {
			continue
		}
		a.logger.Debug("config changed: " + event.Path)
		a.config.Schedule(configKey, domain.ConfigDebounceDelay, func() error {
			a.InvalidateCaches()
			return nil
		})
	}
	return nil
}

// Close drops pending saves and flushes exported spans.
func (a *App) Close(ctx context.Context) error {
	a.saves.CancelAll()
	a.config.CancelAll()
	if a.telemetry != nil {
		return a.telemetry.Shutdown(ctx)
	}
	return nil
}
