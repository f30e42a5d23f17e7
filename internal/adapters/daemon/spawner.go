package daemon

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DaemonConnector = (*Connector)(nil)

const (
	pollInterval    = 100 * time.Millisecond
	maxPollDuration = 5 * time.Second
)

// Connector implements ports.DaemonConnector by spawning this executable
// as "daemon serve".
type Connector struct {
	executablePath string
}

// NewConnector creates a connector that spawns the running executable.
func NewConnector() (*Connector, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine executable path")
	}
	return &Connector{executablePath: exe}, nil
}

// Dial returns a client to a running daemon, or an error if none answers.
func (c *Connector) Dial(ctx context.Context, root string) (ports.DaemonClient, error) {
	client, err := Dial(root)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, zerr.With(err, "root", root)
	}
	return client, nil
}

// Connect returns a client, spawning the daemon first when none answers.
func (c *Connector) Connect(ctx context.Context, root string) (ports.DaemonClient, error) {
	if client, err := c.Dial(ctx, root); err == nil {
		return client, nil
	}

	if err := c.Spawn(ctx, root); err != nil {
		return nil, err
	}

	client, err := c.Dial(ctx, root)
	if err != nil {
		return nil, zerr.Wrap(err, "daemon started but is not responsive")
	}
	return client, nil
}

// Spawn starts a detached daemon for root and waits until it answers.
func (c *Connector) Spawn(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve absolute root path")
	}

	if err := os.MkdirAll(filepath.Join(absRoot, domain.PolishDirName), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create daemon directory")
	}

	logPath := filepath.Join(absRoot, domain.DefaultDaemonLogPath())
	//nolint:gosec // logPath is root plus a fixed name
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.PrivateFilePerm)
	if err != nil {
		return zerr.Wrap(err, "failed to open daemon log")
	}

	//nolint:gosec // executablePath is this binary, args are fixed
	cmd := exec.Command(c.executablePath, "daemon", "serve", "--root", absRoot)
	cmd.Dir = absRoot
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return zerr.Wrap(err, domain.ErrDaemonSpawnFailed.Error())
	}

	go func() {
		_ = cmd.Wait()
		_ = logFile.Close()
	}()

	return c.waitForStartup(ctx, absRoot)
}

func (c *Connector) waitForStartup(ctx context.Context, root string) error {
	ctx, cancel := context.WithTimeout(ctx, maxPollDuration)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if client, err := c.Dial(ctx, root); err == nil {
			_ = client.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			return zerr.With(zerr.Wrap(ctx.Err(), domain.ErrDaemonSpawnFailed.Error()), "root", root)
		case <-ticker.C:
		}
	}
}
