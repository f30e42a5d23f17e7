package domain

import (
	"path/filepath"
	"time"
)

const (
	// PolishDirName is the name of the per-workspace state directory.
	PolishDirName = ".polish"

	// SettingsFileName is the name of the workspace settings file.
	SettingsFileName = ".polish.yaml"

	// DaemonSocketName is the file name of the daemon unix socket.
	DaemonSocketName = "daemon.sock"

	// DaemonPIDName is the file name of the daemon pid file.
	DaemonPIDName = "daemon.pid"

	// DaemonLogName is the file name of the daemon log.
	DaemonLogName = "daemon.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600

	// SocketPerm restricts the daemon socket to the owner.
	SocketPerm = 0o600
)

const (
	// BatchConcurrency is the fixed ceiling of in-flight transforms during a sweep.
	BatchConcurrency = 5

	// SaveDebounceDelay is the quiet period after the last save attempt before transforming.
	SaveDebounceDelay = 300 * time.Millisecond

	// ConfigDebounceDelay coalesces bursts of config artifact events into one invalidation.
	ConfigDebounceDelay = 50 * time.Millisecond

	// DaemonIdleTimeout is how long the daemon stays up without requests.
	DaemonIdleTimeout = 3 * time.Hour
)

// DefaultDaemonSocketPath returns the daemon socket path relative to the workspace root.
func DefaultDaemonSocketPath() string {
	return filepath.Join(PolishDirName, DaemonSocketName)
}

// DefaultDaemonPIDPath returns the daemon pid file path relative to the workspace root.
func DefaultDaemonPIDPath() string {
	return filepath.Join(PolishDirName, DaemonPIDName)
}

// DefaultDaemonLogPath returns the daemon log path relative to the workspace root.
func DefaultDaemonLogPath() string {
	return filepath.Join(PolishDirName, DaemonLogName)
}
