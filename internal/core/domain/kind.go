package domain

import "go.trai.ch/zerr"

// NodeKind is the artifact kind of a node. It selects the build handler.
type NodeKind string

const (
	// KindDocument is a content document, usually markdown with frontmatter.
	KindDocument NodeKind = "document"
	// KindTemplate is a page layout.
	KindTemplate NodeKind = "template"
	// KindPartial is a template fragment included by layouts or other partials.
	KindPartial NodeKind = "partial"
	// KindAsset is a static file processed by trusted asset transformers.
	KindAsset NodeKind = "asset"
	// KindPlugin is a derivative produced by an untrusted sandboxed plugin.
	KindPlugin NodeKind = "plugin"
)

// ParseNodeKind validates a node kind name.
func ParseNodeKind(s string) (NodeKind, error) {
	switch k := NodeKind(s); k {
	case KindDocument, KindTemplate, KindPartial, KindAsset, KindPlugin:
		return k, nil
	default:
		return "", zerr.With(zerr.New("unknown node kind"), "kind", s)
	}
}

// EdgeKind tags a dependency edge from consumer to dependency.
type EdgeKind uint8

const (
	// EdgeTemplateInclude links a document or template to the template it includes.
	EdgeTemplateInclude EdgeKind = 1 << iota
	// EdgeContentReference is an informational link between documents.
	EdgeContentReference
	// EdgePluginInput links a plugin derivative to the node it transforms.
	EdgePluginInput
	// EdgeAssetReference links a document to an asset it embeds.
	EdgeAssetReference
)

// strictEdges is the mask of edge kinds that gate staleness and must stay acyclic.
const strictEdges = EdgeTemplateInclude | EdgePluginInput | EdgeAssetReference

// IsStrict reports whether the edge participates in cycle detection and staleness propagation.
func (k EdgeKind) IsStrict() bool {
	return k&strictEdges != 0
}

// String returns the canonical name of the edge kind.
func (k EdgeKind) String() string {
	switch k {
	case EdgeTemplateInclude:
		return "template-include"
	case EdgeContentReference:
		return "content-reference"
	case EdgePluginInput:
		return "plugin-input"
	case EdgeAssetReference:
		return "asset-reference"
	default:
		return "unknown"
	}
}

// ParseEdgeKind converts a canonical name back into an EdgeKind.
func ParseEdgeKind(s string) (EdgeKind, error) {
	for _, k := range AllEdgeKinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, zerr.With(zerr.New("unknown edge kind"), "kind", s)
}

// AllEdgeKinds lists every edge kind in a stable order.
func AllEdgeKinds() []EdgeKind {
	return []EdgeKind{EdgeTemplateInclude, EdgeContentReference, EdgePluginInput, EdgeAssetReference}
}

// edgeMask is the set of edge kinds between one ordered pair of nodes.
type edgeMask uint8

func (m edgeMask) has(k EdgeKind) bool { return m&edgeMask(k) != 0 }

func (m edgeMask) strict() bool { return EdgeKind(m).IsStrict() }

func (m edgeMask) soft() bool { return m&edgeMask(EdgeContentReference) != 0 }
