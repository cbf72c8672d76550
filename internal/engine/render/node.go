package render

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/press/internal/adapters/markdown"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/press/internal/adapters/sandbox"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/press/internal/adapters/tmpl"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/press/internal/adapters/transform" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the render toolkit Graft node.
const NodeID graft.ID = "engine.render"

func init() {
	graft.Register(graft.Node[*Toolkit]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{tmpl.NodeID, markdown.NodeID, transform.NodeID, sandbox.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Toolkit, error) {
			templates, err := graft.Dep[ports.TemplateEngine](ctx)
			if err != nil {
				return nil, err
			}
			md, err := graft.Dep[ports.MarkdownRenderer](ctx)
			if err != nil {
				return nil, err
			}
			transformers, err := graft.Dep[[]ports.AssetTransformer](ctx)
			if err != nil {
				return nil, err
			}
			sb, err := graft.Dep[ports.Sandbox](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewToolkit(templates, md, transformers, sb, log), nil
		},
	})
}
