package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/fs"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return logger
}

func byID(items []domain.SourceItem) map[string]domain.SourceItem {
	m := make(map[string]domain.SourceItem, len(items))
	for _, it := range items {
		m[it.ID.String()] = it
	}
	return m
}

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/config":  "git config",
		"ignored/file": "ignored content",
		"src/main.go":  "package main",
		"README.md":    "# Readme",
	})

	walker := fs.NewWalker(nil)
	var got []string
	for p := range walker.WalkFiles(root, []string{"ignored"}) {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}
	slices.Sort(got)

	assert.Equal(t, []string{"README.md", "src/main.go"}, got)
}

func TestWalker_WalkFiles_StopsEarly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a": "1", "b": "2", "c": "3"})

	count := 0
	for range fs.NewWalker(nil).WalkFiles(root, nil) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want domain.NodeKind
	}{
		{"index.md", domain.KindDocument},
		{"posts/hello.markdown", domain.KindDocument},
		{"templates/page.html", domain.KindTemplate},
		{"templates/partials/nav.html", domain.KindPartial},
		{"templates/_footer.html", domain.KindPartial},
		{"css/site.css", domain.KindAsset},
		{"img/logo.png", domain.KindAsset},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, fs.Classify(tt.path))
		})
	}
}

func TestWalker_Walk(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "content")
	writeTree(t, src, map[string]string{
		"index.md": "---\ntitle: Home\n---\nSee [about](about.html), [post](posts/hello.md), " +
			"[gone](missing.md) and [ext](https://example.com).\n\n![logo](img/logo.png)\n",
		"about.md":                    "---\nlayout: wide.html\n---\n<img src=\"/img/logo.png\">\n",
		"posts/hello.md":              "---\nderived: [\"chart:data/sales.csv\"]\n---\n[home](../index.md#top)\n",
		"templates/page.html":         `{{template "partials/nav.html" .}}{{block "content" .}}{{end}}`,
		"templates/wide.html":         `{{- template "_footer.html" .}}`,
		"templates/partials/nav.html": "<nav></nav>",
		"templates/_footer.html":      "<footer></footer>",
		"img/logo.png":                "png",
		"data/sales.csv":              "a,b\n1,2\n",
		".DS_Store":                   "junk",
	})

	site := domain.DefaultSite(root)
	site.SourceDir = src
	site.Title = "Demo"
	site.Precompress = []string{"gzip"}
	site.Plugins = []domain.PluginDescriptor{{
		Name:    "chart",
		Command: []string{"/nonexistent/chart"},
		Inputs:  []string{"*.csv"},
		Params:  map[string]string{"width": "640"},
	}}

	items, err := fs.NewWalker(quietLogger(t)).Walk(t.Context(), site)
	require.NoError(t, err)

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID.String()
	}
	assert.True(t, slices.IsSorted(ids), "items are returned in id order")
	assert.NotContains(t, ids, ".DS_Store")

	m := byID(items)
	require.Len(t, m, 10)

	index := m["index.md"]
	assert.Equal(t, domain.KindDocument, index.Kind)
	assert.Equal(t, filepath.Join(src, "index.md"), index.Path)
	assert.Equal(t, "Demo", index.Config["site.title"])
	assert.Equal(t, []domain.Dependency{
		{Target: domain.NewNodeID("about.md"), Kind: domain.EdgeContentReference},
		{Target: domain.NewNodeID("img/logo.png"), Kind: domain.EdgeAssetReference},
		{Target: domain.NewNodeID("missing.md"), Kind: domain.EdgeContentReference},
		{Target: domain.NewNodeID("posts/hello.md"), Kind: domain.EdgeContentReference},
		{Target: domain.NewNodeID("templates/page.html"), Kind: domain.EdgeTemplateInclude},
	}, index.Deps)

	assert.Equal(t, []domain.Dependency{
		{Target: domain.NewNodeID("img/logo.png"), Kind: domain.EdgeAssetReference},
		{Target: domain.NewNodeID("templates/wide.html"), Kind: domain.EdgeTemplateInclude},
	}, m["about.md"].Deps)

	derivedID := domain.PluginNodeID("chart", domain.NewNodeID("data/sales.csv"))
	assert.Equal(t, []domain.Dependency{
		{Target: domain.NewNodeID("index.md"), Kind: domain.EdgeContentReference},
		{Target: derivedID, Kind: domain.EdgeAssetReference},
		{Target: domain.NewNodeID("templates/page.html"), Kind: domain.EdgeTemplateInclude},
	}, m["posts/hello.md"].Deps)

	page := m["templates/page.html"]
	assert.Equal(t, domain.KindTemplate, page.Kind)
	assert.Equal(t, []domain.Dependency{
		{Target: domain.NewNodeID("templates/partials/nav.html"), Kind: domain.EdgeTemplateInclude},
	}, page.Deps, "inline blocks are not file dependencies")

	assert.Equal(t, domain.KindPartial, m["templates/_footer.html"].Kind)
	assert.Equal(t, "gzip", m["img/logo.png"].Config["precompress"])

	derived, ok := m[derivedID.String()]
	require.True(t, ok)
	assert.Equal(t, domain.KindPlugin, derived.Kind)
	assert.Empty(t, derived.Path)
	assert.Equal(t, "640", derived.Config["param.width"])
	assert.Equal(t, []domain.Dependency{
		{Target: domain.NewNodeID("data/sales.csv"), Kind: domain.EdgePluginInput},
	}, derived.Deps)
}

func TestWalker_Walk_MissingSourceDir(t *testing.T) {
	site := domain.DefaultSite(t.TempDir())
	site.SourceDir = filepath.Join(site.Root, "nope")

	_, err := fs.NewWalker(nil).Walk(t.Context(), site)
	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestWalker_Walk_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.md": "a"})
	site := domain.DefaultSite(root)
	site.SourceDir = root

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := fs.NewWalker(nil).Walk(ctx, site)
	assert.ErrorIs(t, err, domain.ErrBuildCancelled)
}

func TestResolveLink(t *testing.T) {
	tests := []struct {
		dir, ref string
		want     string
		ok       bool
	}{
		{"posts", "other.md", "posts/other.md", true},
		{"posts", "../index.md#top", "index.md", true},
		{"posts", "/img/a.png", "img/a.png", true},
		{".", "https://example.com/x", "", false},
		{".", "mailto:me@example.com", "", false},
		{".", "#section", "", false},
		{".", "../outside.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := fs.ResolveLink(tt.dir, tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
