package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/search"    //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/sqlite"    //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/vcs"       //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/press/internal/engine/render"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.WalkerNodeID,
			fs.WriterNodeID,
			render.NodeID,
			cas.NodeID,
			sqlite.NodeID,
			search.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			metrics.NodeID,
			metrics.ExporterNodeID,
			vcs.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
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

//nolint:cyclop // one lookup per collaborator
func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	walker, err := graft.Dep[ports.SourceWalker](ctx)
	if err != nil {
		return nil, err
	}
	toolkit, err := graft.Dep[*render.Toolkit](ctx)
	if err != nil {
		return nil, err
	}

	var stores Stores
	if stores.Blobs, err = graft.Dep[ports.BlobStoreFactory](ctx); err != nil {
		return nil, err
	}
	if stores.Records, err = graft.Dep[ports.RecordsFactory](ctx); err != nil {
		return nil, err
	}
	if stores.Outputs, err = graft.Dep[ports.OutputWriterFactory](ctx); err != nil {
		return nil, err
	}
	if stores.Indexers, err = graft.Dep[ports.SearchIndexerFactory](ctx); err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	m, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}
	exporter, err := graft.Dep[ports.MetricsExporter](ctx)
	if err != nil {
		return nil, err
	}
	detector, err := graft.Dep[ports.ChangeDetector](ctx)
	if err != nil {
		return nil, err
	}
	watchers, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, walker, toolkit, stores, log).
		WithTracer(tracer).
		WithMetrics(m, exporter).
		WithChangeDetector(detector).
		WithWatcherFactory(watchers), nil
}
