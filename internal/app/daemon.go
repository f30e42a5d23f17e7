package app

import (
	"context"

	"go.trai.ch/polish/internal/adapters/daemon"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ServeDaemon runs the daemon for root in the foreground. It serves save
// requests, watches config artifacts and, when configured, exposes metrics.
// It returns once the daemon is shut down, idles out, or ctx is done.
func (a *App) ServeDaemon(ctx context.Context, root string) error {
	settings := a.loadSettings(root)

	lifecycle := daemon.NewLifecycle(domain.DaemonIdleTimeout)
	srv := daemon.NewServer(root, a, lifecycle, a.logger)
	a.logger.Debug("daemon session " + srv.SessionID())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return srv.Serve(ctx)
	})
	g.Go(func() error {
		return a.WatchConfig(ctx, root)
	})
	if a.exporter != nil && settings.Metrics.Listen != "" {
		g.Go(func() error {
			return a.exporter.Serve(ctx, settings.Metrics.Listen)
		})
	}

	err := g.Wait()
	a.saves.CancelAll()
	return err
}

// DaemonStatus reports the daemon of root. A stopped daemon is not an error.
func (a *App) DaemonStatus(ctx context.Context, root string) (*ports.DaemonStatus, error) {
	client, err := a.connector.Dial(ctx, root)
	if err != nil {
		return &ports.DaemonStatus{Running: false, Root: root}, nil //nolint:nilerr // not running
	}
	defer func() { _ = client.Close() }()

	return client.Status(ctx)
}

// StopDaemon asks the daemon of root to shut down.
func (a *App) StopDaemon(ctx context.Context, root string) error {
	client, err := a.connector.Dial(ctx, root)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return client.Shutdown(ctx)
}

// InvalidateDaemon drops the caches of a running daemon.
func (a *App) InvalidateDaemon(ctx context.Context, root string) error {
	client, err := a.connector.Dial(ctx, root)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return client.Invalidate(ctx)
}

// ForwardSave hands a save to the daemon of req.Root, starting it if needed.
// Saves that would be skipped never reach the daemon.
// When the daemon cannot serve the request the original text is returned,
// so the save always proceeds.
func (a *App) ForwardSave(ctx context.Context, req domain.SaveRequest) domain.SaveResult {
	original := domain.SaveResult{Text: req.Text}
	if !a.saveEnabled(req) {
		return original
	}

	client, err := a.connector.Connect(ctx, req.Root)
	if err != nil {
		a.logger.Warn(zerr.With(err, "path", req.Path).Error())
		return original
	}
	defer func() { _ = client.Close() }()

	res, err := client.WillSave(ctx, req)
	if err != nil {
		a.logger.Warn(zerr.With(err, "path", req.Path).Error())
		return original
	}
	return res
}
