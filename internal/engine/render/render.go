// Package render implements the build handler of every node kind: documents
// are rendered through their layout, templates are checked and bundled with
// the partials they include, assets run through the trusted transformer chain,
// and plugin derivatives are produced inside the sandbox.
package render

import (
	"path"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
)

// TemplateDir is the source subdirectory holding layouts and partials.
const TemplateDir = "templates"

// PrecompressFunc returns the compressed variants of an output named p.
type PrecompressFunc func(p string, content []byte) (map[string][]byte, error)

// Toolkit holds the collaborators shared by the handlers of every site.
type Toolkit struct {
	templates    ports.TemplateEngine
	markdown     ports.MarkdownRenderer
	transformers []ports.AssetTransformer
	sandbox      ports.Sandbox
	logger       ports.Logger
}

// NewToolkit creates a Toolkit.
func NewToolkit(
	templates ports.TemplateEngine,
	markdown ports.MarkdownRenderer,
	transformers []ports.AssetTransformer,
	sandbox ports.Sandbox,
	logger ports.Logger,
) *Toolkit {
	return &Toolkit{
		templates:    templates,
		markdown:     markdown,
		transformers: transformers,
		sandbox:      sandbox,
		logger:       logger,
	}
}

// Handlers returns the handler of every node kind for site. precompress may be nil.
func (t *Toolkit) Handlers(site *domain.Site, precompress PrecompressFunc) map[domain.NodeKind]ports.Handler {
	tmpl := NewTemplateHandler(t.templates)
	return map[domain.NodeKind]ports.Handler{
		domain.KindDocument: NewDocumentHandler(t.markdown, t.templates, SiteInfo{Title: site.Title, BaseURL: site.BaseURL}, precompress),
		domain.KindTemplate: tmpl,
		domain.KindPartial:  tmpl,
		domain.KindAsset:    NewAssetHandler(t.transformers, precompress),
		domain.KindPlugin:   NewPluginHandler(t.sandbox, site.Plugins, t.logger),
	}
}

// OutputPath maps a document id to the page it produces: posts/a.md becomes
// posts/a.html. Other ids are returned unchanged.
func OutputPath(id domain.NodeID) string {
	p := id.String()
	switch ext := path.Ext(p); strings.ToLower(ext) {
	case ".md", ".markdown":
		return strings.TrimSuffix(p, ext) + ".html"
	default:
		return p
	}
}

// URL joins a site base URL and an output path.
func URL(baseURL, outputPath string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + outputPath
}

// TemplateName is the name a template is included by, relative to TemplateDir.
func TemplateName(id domain.NodeID) string {
	return strings.TrimPrefix(id.String(), TemplateDir+"/")
}

func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}
