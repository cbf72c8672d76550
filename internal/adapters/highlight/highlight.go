// Package highlight implements ports.Highlighter with chroma.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Highlighter = (*Highlighter)(nil)

// errUnknownLanguage is returned for fence languages chroma has no lexer for.
var errUnknownLanguage = zerr.New("unknown language")

// DefaultStyle is the chroma style used for generated CSS classes.
const DefaultStyle = "github"

// Highlighter renders code as class-annotated HTML. The formatter is stateless
// and safe for concurrent use.
type Highlighter struct {
	formatter *html.Formatter
	style     *chroma.Style
}

// New creates a Highlighter that emits CSS classes instead of inline styles.
func New() *Highlighter {
	return &Highlighter{
		formatter: html.New(html.WithClasses(true), html.TabWidth(4)),
		style:     styles.Get(DefaultStyle),
	}
}

// Highlight renders code in the given language as a <pre> block.
func (h *Highlighter) Highlight(code, lang string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", zerr.With(zerr.Wrap(errUnknownLanguage, "no lexer"), "lang", lang)
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to tokenise"), "lang", lang)
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, it); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to format"), "lang", lang)
	}
	return b.String(), nil
}

// CSS returns the stylesheet matching the emitted classes.
func (h *Highlighter) CSS() (string, error) {
	var b strings.Builder
	if err := h.formatter.WriteCSS(&b, h.style); err != nil {
		return "", zerr.Wrap(err, "failed to write highlight css")
	}
	return b.String(), nil
}
