package domain

import "go.trai.ch/zerr"

var (
	// ErrFormatFailed is returned when the single-document command fails.
	ErrFormatFailed = zerr.New("formatting failed")

	// ErrItemTransformFailed is recorded when one item of a batch fails to transform.
	ErrItemTransformFailed = zerr.New("failed to transform item")

	// ErrSweepIncomplete is returned when a sweep finished with failed files.
	// Details have already been logged per file.
	ErrSweepIncomplete = zerr.New("some files failed to format")

	// ErrSaveHookFailed is logged when the debounced on-save transform fails.
	ErrSaveHookFailed = zerr.New("format on save failed")

	// ErrConfigResolutionFailed is logged when a style configuration cannot be resolved.
	// Callers fall back to formatter defaults.
	ErrConfigResolutionFailed = zerr.New("failed to resolve style configuration")

	// ErrFormatterFailed is returned when the style formatter stage fails.
	ErrFormatterFailed = zerr.New("style formatter failed")

	// ErrLinterFailed is logged when the lint autofix stage fails.
	ErrLinterFailed = zerr.New("lint autofix failed")

	// ErrEmptyCommand is returned when a transform stage has no command configured.
	ErrEmptyCommand = zerr.New("transform command is empty")

	// ErrUnsupportedFile is returned when a document has no recognized language.
	ErrUnsupportedFile = zerr.New("unsupported file type")

	// ErrDocumentReadFailed is returned when a document cannot be read.
	ErrDocumentReadFailed = zerr.New("failed to read document")

	// ErrDocumentWriteFailed is returned when a document cannot be persisted.
	ErrDocumentWriteFailed = zerr.New("failed to persist document")

	// ErrDiscoveryFailed is returned when candidate items cannot be enumerated.
	ErrDiscoveryFailed = zerr.New("failed to discover files")

	// ErrNotGitRepository is returned by changed-files discovery outside a git worktree.
	ErrNotGitRepository = zerr.New("workspace is not a git repository")

	// ErrConfirmFailed is returned when the confirmation prompt cannot be answered.
	ErrConfirmFailed = zerr.New("failed to read confirmation")

	// ErrConfigReadFailed is returned when the settings file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the settings file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidDiscoveryMode is returned when the discovery setting is not recognized.
	ErrInvalidDiscoveryMode = zerr.New("invalid discovery mode, expected 'all' or 'changed'")

	// ErrInvalidOutputFormat is returned when a transform stage declares an unknown output format.
	ErrInvalidOutputFormat = zerr.New("invalid output format, expected 'text' or 'eslint-json'")

	// ErrInvalidTelemetryProtocol is returned when the span export protocol is not recognized.
	ErrInvalidTelemetryProtocol = zerr.New("invalid telemetry protocol, expected 'grpc' or 'http/protobuf'")

	// ErrTelemetrySetupFailed is returned when the span exporter cannot be created.
	ErrTelemetrySetupFailed = zerr.New("failed to set up telemetry")

	// ErrWatcherFailed is returned when the config artifact watcher cannot start.
	ErrWatcherFailed = zerr.New("failed to start config watcher")

	// ErrDaemonSpawnFailed is returned when the daemon process cannot be started.
	ErrDaemonSpawnFailed = zerr.New("failed to spawn daemon")

	// ErrDaemonUnavailable is returned when the daemon cannot be reached.
	ErrDaemonUnavailable = zerr.New("daemon is not running")
)
