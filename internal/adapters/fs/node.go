package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/adapters/logger"
	"go.trai.ch/press/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the source walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// WriterNodeID is the unique identifier for the output writer factory Graft node.
	WriterNodeID graft.ID = "adapter.fs.writer"
)

// WriterFactory opens OutputWriters.
type WriterFactory struct {
	Logger ports.Logger
}

// Open implements ports.OutputWriterFactory.
func (f WriterFactory) Open(outputDir, manifestPath string) (ports.OutputWriter, error) {
	return NewOutputWriter(outputDir, manifestPath, f.Logger)
}

func init() {
	graft.Register(graft.Node[ports.SourceWalker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SourceWalker, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWalker(log), nil
		},
	})

	graft.Register(graft.Node[ports.OutputWriterFactory]{
		ID:        WriterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.OutputWriterFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return WriterFactory{Logger: log}, nil
		},
	})
}
