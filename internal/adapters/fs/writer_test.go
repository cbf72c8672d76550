package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/fs"
	"go.trai.ch/press/internal/core/domain"
)

func page(id, out, body string) domain.Artifact {
	return domain.Artifact{
		Node:      domain.NewNodeID(id),
		Kind:      domain.KindDocument,
		MediaType: "text/html",
		Content:   []byte(body),
		Meta:      map[string]string{domain.MetaOutputPath: out},
	}
}

func TestOutputWriter_WriteAndSkipUnchanged(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "public")
	w, err := fs.NewOutputWriter(out, filepath.Join(root, "outputs.cbor"), quietLogger(t))
	require.NoError(t, err)

	a := page("posts/a.md", "posts/a/index.html", "<p>a</p>")
	a.Outputs = map[string][]byte{"posts/a/index.html.gz": []byte("gz")}
	require.NoError(t, w.Write(t.Context(), a, true))

	dst := filepath.Join(out, "posts", "a", "index.html")
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", string(data))
	assert.FileExists(t, filepath.Join(out, "posts", "a", "index.html.gz"))

	// Identical content leaves the file alone.
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(dst, old, old))
	require.NoError(t, w.Write(t.Context(), a, false))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.WithinDuration(t, old, info.ModTime(), time.Second)

	// A cached artifact restores a file deleted by hand.
	require.NoError(t, os.Remove(dst))
	require.NoError(t, w.Write(t.Context(), a, false))
	assert.FileExists(t, dst)
}

func TestOutputWriter_DropsFilesNoLongerProduced(t *testing.T) {
	root := t.TempDir()
	w, err := fs.NewOutputWriter(root, filepath.Join(t.TempDir(), "outputs.cbor"), quietLogger(t))
	require.NoError(t, err)

	css := domain.Artifact{
		Node:    domain.NewNodeID("css/site.css"),
		Kind:    domain.KindAsset,
		Content: []byte("a{}"),
		Meta:    map[string]string{domain.MetaOutputPath: "css/site.1111111111.css"},
	}
	require.NoError(t, w.Write(t.Context(), css, true))

	css.Content = []byte("b{}")
	css.Meta[domain.MetaOutputPath] = "css/site.2222222222.css"
	require.NoError(t, w.Write(t.Context(), css, true))

	assert.NoFileExists(t, filepath.Join(root, "css", "site.1111111111.css"))
	assert.FileExists(t, filepath.Join(root, "css", "site.2222222222.css"))
}

func TestOutputWriter_RemoveAndManifest(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "public")
	manifest := filepath.Join(root, ".press", "outputs.cbor")

	w, err := fs.NewOutputWriter(out, manifest, quietLogger(t))
	require.NoError(t, err)
	require.NoError(t, w.Write(t.Context(), page("a.md", "a/index.html", "a"), true))
	require.NoError(t, w.Write(t.Context(), page("b.md", "b/index.html", "b"), true))
	require.NoError(t, w.Flush())

	// A new writer sees the outputs of the previous build.
	w2, err := fs.NewOutputWriter(out, manifest, quietLogger(t))
	require.NoError(t, err)
	assert.Equal(t, domain.NodeIDs("a.md", "b.md"), w2.Known())

	require.NoError(t, w2.Remove(t.Context(), domain.NewNodeID("a.md")))
	assert.NoFileExists(t, filepath.Join(out, "a", "index.html"))
	assert.NoDirExists(t, filepath.Join(out, "a"), "empty directories are pruned")
	assert.DirExists(t, out)
	assert.Equal(t, domain.NodeIDs("b.md"), w2.Known())

	// Removing an unknown node is a no-op.
	require.NoError(t, w2.Remove(t.Context(), domain.NewNodeID("zzz.md")))
}

func TestOutputWriter_TemplatesProduceNothing(t *testing.T) {
	root := t.TempDir()
	w, err := fs.NewOutputWriter(root, filepath.Join(t.TempDir(), "outputs.cbor"), quietLogger(t))
	require.NoError(t, err)

	tmpl := domain.Artifact{Node: domain.NewNodeID("templates/page.html"), Kind: domain.KindTemplate}
	require.NoError(t, w.Write(t.Context(), tmpl, true))
	assert.Empty(t, w.Known())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOutputWriter_RejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()
	w, err := fs.NewOutputWriter(filepath.Join(root, "public"), filepath.Join(root, "outputs.cbor"), quietLogger(t))
	require.NoError(t, err)

	for _, p := range []string{"../evil.html", "/etc/passwd"} {
		err := w.Write(t.Context(), page("x.md", p, "x"), true)
		require.ErrorIs(t, err, domain.ErrIO, p)
	}
	assert.NoFileExists(t, filepath.Join(root, "evil.html"))
}

func TestArtifactFiles(t *testing.T) {
	a := page("a.md", "a/index.html", "body")
	a.Outputs = map[string][]byte{"a/index.html.zst": []byte("z")}

	files := fs.ArtifactFiles(a)
	assert.Equal(t, map[string][]byte{
		"a/index.html":     []byte("body"),
		"a/index.html.zst": []byte("z"),
	}, files)
}
