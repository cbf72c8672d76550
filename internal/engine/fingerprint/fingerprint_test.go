package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/engine/fingerprint"
)

func item(id string, kind domain.NodeKind, content string) domain.SourceItem {
	return domain.SourceItem{ID: domain.NewNodeID(id), Kind: kind, Path: id, Content: []byte(content)}
}

func TestSelf_Deterministic(t *testing.T) {
	a := item("posts/a.md", domain.KindDocument, "hello")
	a.Config = map[string]string{"title": "A", "draft": "false"}
	b := item("posts/a.md", domain.KindDocument, "hello")
	b.Config = map[string]string{"draft": "false", "title": "A"}

	assert.Equal(t, fingerprint.Self(a), fingerprint.Self(b))
	assert.False(t, fingerprint.Self(a).IsZero())
}

func TestSelf_SensitiveToEveryField(t *testing.T) {
	base := item("a", domain.KindDocument, "x")
	fp := fingerprint.Self(base)

	content := base
	content.Content = []byte("y")
	kind := base
	kind.Kind = domain.KindAsset
	name := base
	name.ID = domain.NewNodeID("b")
	cfg := base
	cfg.Config = map[string]string{"k": "v"}

	for _, other := range []domain.SourceItem{content, kind, name, cfg} {
		assert.NotEqual(t, fp, fingerprint.Self(other))
	}

	// Separators keep config and content from aliasing.
	left := base
	left.Config = map[string]string{"k": "v"}
	left.Content = nil
	right := base
	right.Config = map[string]string{"k": ""}
	right.Content = []byte("v")
	assert.NotEqual(t, fingerprint.Self(left), fingerprint.Self(right))
}

func buildGraph(t *testing.T) *domain.ContentGraph {
	t.Helper()
	g := domain.NewContentGraph()
	g.UpsertNode(domain.NewNodeID("page.html"), domain.KindTemplate, domain.Fingerprint{1})
	g.UpsertNode(domain.NewNodeID("nav.html"), domain.KindPartial, domain.Fingerprint{2})
	g.UpsertNode(domain.NewNodeID("a.md"), domain.KindDocument, domain.Fingerprint{3})
	g.UpsertNode(domain.NewNodeID("b.md"), domain.KindDocument, domain.Fingerprint{4})
	require.NoError(t, g.AddEdge(domain.NewNodeID("page.html"), domain.NewNodeID("nav.html"), domain.EdgeTemplateInclude))
	require.NoError(t, g.AddEdge(domain.NewNodeID("a.md"), domain.NewNodeID("page.html"), domain.EdgeTemplateInclude))
	require.NoError(t, g.AddEdge(domain.NewNodeID("b.md"), domain.NewNodeID("page.html"), domain.EdgeTemplateInclude))
	require.NoError(t, g.AddEdge(domain.NewNodeID("a.md"), domain.NewNodeID("b.md"), domain.EdgeContentReference))
	return g
}

func TestStore_Combined(t *testing.T) {
	g := buildGraph(t)
	store := fingerprint.NewStore(g)

	leaf, err := store.Combined(domain.NewNodeID("nav.html"))
	require.NoError(t, err)
	assert.Equal(t, domain.Fingerprint{2}, leaf, "leaf combined equals self")

	all, err := store.All()
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.NotEqual(t, domain.Fingerprint{1}, all[domain.NewNodeID("page.html")])
	assert.NotEqual(t, all[domain.NewNodeID("a.md")], all[domain.NewNodeID("b.md")])

	// A fresh store over an identical graph agrees.
	again, err := fingerprint.NewStore(buildGraph(t)).All()
	require.NoError(t, err)
	assert.Equal(t, all, again)

	_, err = store.Combined(domain.NewNodeID("missing"))
	assert.ErrorIs(t, err, domain.ErrUnknownNode)
}

func TestStore_ChangePropagation(t *testing.T) {
	g := buildGraph(t)
	store := fingerprint.NewStore(g)
	before, err := store.All()
	require.NoError(t, err)

	// Editing the partial changes every strict dependent.
	g.UpsertNode(domain.NewNodeID("nav.html"), domain.KindPartial, domain.Fingerprint{9})
	after, err := store.All()
	require.NoError(t, err)

	for _, name := range []string{"nav.html", "page.html", "a.md", "b.md"} {
		assert.NotEqual(t, before[domain.NewNodeID(name)], after[domain.NewNodeID(name)], name)
	}

	// Editing b.md leaves a.md untouched: the content reference is soft.
	g.UpsertNode(domain.NewNodeID("b.md"), domain.KindDocument, domain.Fingerprint{8})
	last, err := store.All()
	require.NoError(t, err)
	assert.Equal(t, after[domain.NewNodeID("a.md")], last[domain.NewNodeID("a.md")])
	assert.NotEqual(t, after[domain.NewNodeID("b.md")], last[domain.NewNodeID("b.md")])
}

func TestStore_DependencyOrderIsIrrelevant(t *testing.T) {
	mk := func(order []string) domain.Fingerprint {
		g := domain.NewContentGraph()
		g.UpsertNode(domain.NewNodeID("doc"), domain.KindDocument, domain.Fingerprint{1})
		for _, n := range order {
			g.UpsertNode(domain.NewNodeID(n), domain.KindAsset, domain.Fingerprint{byte(len(n))})
		}
		for _, n := range order {
			require.NoError(t, g.AddEdge(domain.NewNodeID("doc"), domain.NewNodeID(n), domain.EdgeAssetReference))
		}
		fp, err := fingerprint.NewStore(g).Combined(domain.NewNodeID("doc"))
		require.NoError(t, err)
		return fp
	}
	assert.Equal(t, mk([]string{"x.css", "yy.png"}), mk([]string{"yy.png", "x.css"}))
}

func TestOutput(t *testing.T) {
	a := domain.Artifact{MediaType: "text/html", Content: []byte("<p>x</p>"), Outputs: map[string][]byte{"index.html.gz": {1}, "index.html.br": {2}}}
	b := a.Clone()
	assert.Equal(t, fingerprint.Output(a), fingerprint.Output(b))

	// Metadata does not affect the produced bytes.
	b.Meta = map[string]string{domain.MetaTitle: "x"}
	assert.Equal(t, fingerprint.Output(a), fingerprint.Output(b))

	b.Outputs["index.html.gz"] = []byte{3}
	assert.NotEqual(t, fingerprint.Output(a), fingerprint.Output(b))

	c := a.Clone()
	c.MediaType = "text/plain"
	assert.NotEqual(t, fingerprint.Output(a), fingerprint.Output(c))
}
