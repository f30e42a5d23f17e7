// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/polish/internal/adapters/config"
	_ "go.trai.ch/polish/internal/adapters/daemon"
	_ "go.trai.ch/polish/internal/adapters/fs"
	_ "go.trai.ch/polish/internal/adapters/git"
	_ "go.trai.ch/polish/internal/adapters/logger"
	_ "go.trai.ch/polish/internal/adapters/metrics"
	_ "go.trai.ch/polish/internal/adapters/telemetry"
	_ "go.trai.ch/polish/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/polish/internal/app"
)
