// Package markdown implements ports.MarkdownRenderer with goldmark.
package markdown

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MarkdownRenderer = (*Renderer)(nil)

// Renderer converts markdown to HTML. The goldmark instance is configured
// once; Convert keeps per-call state, so one Renderer serves every worker.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GitHub Flavored Markdown, heading ids, and raw
// HTML passthrough. Fenced code blocks go through hl when it is non-nil.
func New(hl ports.Highlighter) *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
				extension.DefinitionList,
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(
				ghtml.WithUnsafe(),
				renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{hl: hl}, 100)),
			),
		),
	}
}

// Render converts src to an HTML fragment.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, zerr.Wrap(domain.ErrTemplate, "markdown: "+err.Error())
	}
	return buf.Bytes(), nil
}

// codeBlockRenderer replaces goldmark's fenced code rendering. Highlighter
// failures degrade to an escaped <pre><code> block.
type codeBlockRenderer struct {
	hl ports.Highlighter
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := node.(*ast.FencedCodeBlock)
	lang := string(block.Language(source))

	var code bytes.Buffer
	lines := block.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if lang != "" && r.hl != nil {
		if out, err := r.hl.Highlight(code.String(), lang); err == nil {
			_, _ = w.WriteString(out)
			return ast.WalkSkipChildren, nil
		}
	}

	_, _ = w.WriteString("<pre><code")
	if lang != "" {
		_, _ = w.WriteString(` class="language-` + html.EscapeString(lang) + `"`)
	}
	_, _ = w.WriteString(">")
	_, _ = w.WriteString(html.EscapeString(code.String()))
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}
