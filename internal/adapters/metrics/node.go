package metrics

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/core/ports"
)

const (
	// RecorderNodeID is the unique identifier for the shared recorder Graft node.
	RecorderNodeID graft.ID = "adapter.metrics.recorder"
	// NodeID is the unique identifier for the metrics Graft node.
	NodeID graft.ID = "adapter.metrics"
	// ExporterNodeID is the unique identifier for the metrics exporter Graft node.
	ExporterNodeID graft.ID = "adapter.metrics.exporter"
)

func init() {
	graft.Register(graft.Node[*Recorder]{
		ID:        RecorderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Recorder, error) {
			return NewRecorder(), nil
		},
	})

	graft.Register(graft.Node[ports.Metrics]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{RecorderNodeID},
		Run: func(ctx context.Context) (ports.Metrics, error) {
			return graft.Dep[*Recorder](ctx)
		},
	})

	graft.Register(graft.Node[ports.MetricsExporter]{
		ID:        ExporterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{RecorderNodeID},
		Run: func(ctx context.Context) (ports.MetricsExporter, error) {
			return graft.Dep[*Recorder](ctx)
		},
	})
}
