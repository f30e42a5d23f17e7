package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polish/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/daemon"    //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/git"       //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/transform" //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/polish/internal/engine/memo"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles what the CLI needs from the graph.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			telemetry.TracerNodeID,
			config.NodeID,
			fs.StoreNodeID,
			fs.WalkerNodeID,
			git.NodeID,
			metrics.NodeID,
			watcher.NodeID,
			daemon.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

//nolint:cyclop // dependency fan-in
func runAppNode(ctx context.Context) (*App, error) {
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.DocumentStore](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	changed, err := graft.Dep[*git.ChangedFiles](ctx)
	if err != nil {
		return nil, err
	}

	prom, err := graft.Dep[*metrics.Prometheus](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	connector, err := graft.Dep[ports.DaemonConnector](ctx)
	if err != nil {
		return nil, err
	}

	styles := memo.New[transform.StyleConfig](transform.StyleCacheName).WithObserver(prom)
	engines := memo.New[*transform.LintEngine](transform.EngineCacheName).WithObserver(prom)
	pipeline := transform.NewPipeline(log, tracer, loader, shell.NewRunner(log), styles, engines)

	return New(log, tracer, loader, store, pipeline, walker, changed, prom, w, connector).
		WithCaches(styles, engines).
		WithExporter(prom), nil
}
