package tmpl

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the template engine Graft node.
const NodeID graft.ID = "adapter.template_engine"

func init() {
	graft.Register(graft.Node[ports.TemplateEngine]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TemplateEngine, error) {
			return New(), nil
		},
	})
}
