package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/tmpl"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/engine/render"
)

func id(s string) domain.NodeID { return domain.NewNodeID(s) }

// buildTemplate runs the template handler the way the scheduler does,
// stamping node and kind onto the artifact.
func buildTemplate(t *testing.T, name string, kind domain.NodeKind, src string, deps map[domain.NodeID]domain.Artifact) domain.Artifact {
	t.Helper()
	h := render.NewTemplateHandler(tmpl.New())
	req := &domain.BuildRequest{
		Node:   domain.Node{ID: id(render.TemplateDir + "/" + name), Kind: kind},
		Source: []byte(src),
		Deps:   deps,
	}
	a, err := h.Build(t.Context(), req)
	require.NoError(t, err)
	a.Node = req.Node.ID
	a.Kind = kind
	return a
}

func TestTemplateHandler_BundlesIncludes(t *testing.T) {
	nav := buildTemplate(t, "partials/nav.html", domain.KindPartial, `<nav>{{.Site.Title}}</nav>`, nil)
	layout := buildTemplate(t, "page.html", domain.KindTemplate,
		`<title>{{.Title}}</title>{{template "partials/nav.html" .}}<main>{{.Content}}</main>`,
		map[domain.NodeID]domain.Artifact{nav.Node: nav})

	assert.Equal(t, render.BundleMediaType, layout.MediaType)
	assert.Equal(t, "page.html", layout.MetaValue(render.MetaTemplate))

	bundle, err := render.DecodeBundle(layout)
	require.NoError(t, err)
	assert.Len(t, bundle, 2)
	assert.Contains(t, bundle, "partials/nav.html")
	assert.Contains(t, bundle, "page.html")
}

func TestTemplateHandler_ParseError(t *testing.T) {
	h := render.NewTemplateHandler(tmpl.New())
	_, err := h.Build(t.Context(), &domain.BuildRequest{
		Node:   domain.Node{ID: id("templates/broken.html"), Kind: domain.KindTemplate},
		Source: []byte(`{{if}}`),
	})
	assert.ErrorIs(t, err, domain.ErrTemplate)
}

func TestDecodeBundle_RejectsOtherArtifacts(t *testing.T) {
	_, err := render.DecodeBundle(domain.Artifact{MediaType: "text/css", Content: []byte("a{}")})
	assert.ErrorIs(t, err, domain.ErrTemplate)

	_, err = render.DecodeBundle(domain.Artifact{MediaType: render.BundleMediaType, Content: []byte{0xff}})
	assert.ErrorIs(t, err, domain.ErrTemplate)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "posts/a.html", render.OutputPath(id("posts/a.md")))
	assert.Equal(t, "index.html", render.OutputPath(id("index.markdown")))
	assert.Equal(t, "css/site.css", render.OutputPath(id("css/site.css")))
	assert.Equal(t, "https://example.org/posts/a.html", render.URL("https://example.org/", "posts/a.html"))
	assert.Equal(t, "/a.html", render.URL("", "a.html"))
	assert.Equal(t, "partials/nav.html", render.TemplateName(id("templates/partials/nav.html")))
}
