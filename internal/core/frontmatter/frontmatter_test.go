package frontmatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/frontmatter"
)

func TestSplit(t *testing.T) {
	src := []byte("---\ntitle: Hello\nlayout: post.html\ndraft: true\ntags: [go, build]\nderived: [\"chart:data/sales.csv\"]\nauthor: ada\n---\n# Body\n")

	fm, body, err := frontmatter.Split(src)
	require.NoError(t, err)
	assert.Equal(t, "Hello", fm.Title)
	assert.Equal(t, "post.html", fm.Layout)
	assert.True(t, fm.Draft)
	assert.Equal(t, []string{"go", "build"}, fm.Tags)
	assert.Equal(t, []string{"chart:data/sales.csv"}, fm.Derived)
	assert.Equal(t, "ada", fm.Params["author"])
	assert.Equal(t, "# Body\n", string(body))
}

func TestSplit_AuthorsAndRedirects(t *testing.T) {
	src := []byte("---\nauthors: [ada, grace]\nredirect_from: [/old/post/, legacy.html]\nredirect_to: https://example.org/new\n---\nbody")

	fm, _, err := frontmatter.Split(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada", "grace"}, fm.Authors)
	assert.Equal(t, []string{"/old/post/", "legacy.html"}, fm.RedirectFrom)
	assert.Equal(t, "https://example.org/new", fm.RedirectTo)
}

func TestSplit_NoHeader(t *testing.T) {
	src := []byte("# Just markdown\n---\nnot a header\n")
	fm, body, err := frontmatter.Split(src)
	require.NoError(t, err)
	assert.Empty(t, fm.Title)
	assert.Equal(t, src, body)
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, err := frontmatter.Split([]byte("---\r\ntitle: Win\r\n---\r\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "Win", fm.Title)
	assert.Equal(t, "body", string(body))
}

func TestSplit_Errors(t *testing.T) {
	_, _, err := frontmatter.Split([]byte("---\ntitle: x\n"))
	assert.ErrorIs(t, err, domain.ErrTemplate)

	_, _, err = frontmatter.Split([]byte("---\ntitle: [x\n---\n"))
	assert.ErrorIs(t, err, domain.ErrTemplate)
}
