package ports

import (
	"context"
	"time"

	"go.trai.ch/polish/internal/core/domain"
)

//go:generate mockgen -source=daemon.go -destination=mocks/mock_daemon.go -package=mocks

// DaemonStatus represents the current state of the daemon.
type DaemonStatus struct {
	Running       bool
	PID           int
	SessionID     string
	Root          string
	Uptime        time.Duration
	LastActivity  time.Time
	IdleRemaining time.Duration
	PendingSaves  int
}

// DaemonClient defines the interface for communicating with the daemon.
type DaemonClient interface {
	// Ping checks if the daemon is alive and resets the inactivity timer.
	Ping(ctx context.Context) error

	// Status returns the current daemon status.
	Status(ctx context.Context) (*DaemonStatus, error)

	// WillSave forwards one save attempt and returns the text to commit.
	WillSave(ctx context.Context, req domain.SaveRequest) (domain.SaveResult, error)

	// Invalidate drops the daemon's cached style configurations and lint engines.
	Invalidate(ctx context.Context) error

	// Shutdown requests a graceful daemon shutdown.
	Shutdown(ctx context.Context) error

	// Close releases client resources.
	Close() error
}

// DaemonConnector manages daemon lifecycle from the CLI perspective.
type DaemonConnector interface {
	// Connect returns a client to the daemon serving root, spawning it if necessary.
	Connect(ctx context.Context, root string) (DaemonClient, error)

	// Dial returns a client to an already running daemon.
	Dial(ctx context.Context, root string) (DaemonClient, error)
}
