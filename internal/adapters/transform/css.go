// Package transform provides the trusted asset transformers and the
// precompression encoders.
package transform

import (
	"bytes"
	"context"
	"path"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetTransformer = CSSMinifier{}

// CSSMinifier strips comments and collapses whitespace in stylesheets. String
// literals and url() arguments are copied verbatim.
type CSSMinifier struct{}

// Name implements ports.AssetTransformer.
func (CSSMinifier) Name() string { return "css-minify" }

// Accepts implements ports.AssetTransformer.
func (CSSMinifier) Accepts(p string) bool {
	return strings.EqualFold(path.Ext(p), ".css") && !strings.HasSuffix(strings.ToLower(p), ".min.css")
}

// Transform implements ports.AssetTransformer.
func (CSSMinifier) Transform(_ context.Context, in []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(in))

	pendingSpace := false
	for i := 0; i < len(in); i++ {
		c := in[i]
		switch {
		case c == '/' && i+1 < len(in) && in[i+1] == '*':
			end := bytes.Index(in[i+2:], []byte("*/"))
			if end < 0 {
				return nil, zerr.With(zerr.Wrap(domain.ErrTransform, "unterminated comment"), "offset", i)
			}
			i += end + 3
			pendingSpace = true
		case c == '"' || c == '\'':
			j := closingQuote(in, i)
			if j < 0 {
				return nil, zerr.With(zerr.Wrap(domain.ErrTransform, "unterminated string"), "offset", i)
			}
			flushSpace(&out, &pendingSpace, c)
			out.Write(in[i : j+1])
			i = j
		case isSpace(c):
			pendingSpace = true
		default:
			flushSpace(&out, &pendingSpace, c)
			out.WriteByte(c)
		}
	}
	return bytes.TrimSpace(out.Bytes()), nil
}

// flushSpace writes one pending space unless a neighbor makes it redundant.
func flushSpace(out *bytes.Buffer, pending *bool, next byte) {
	if !*pending {
		return
	}
	*pending = false
	if out.Len() == 0 || strings.IndexByte("{};,>~", next) >= 0 {
		return
	}
	if prev := out.Bytes()[out.Len()-1]; strings.IndexByte("{};:,>~(", prev) >= 0 {
		return
	}
	out.WriteByte(' ')
}

func closingQuote(in []byte, start int) int {
	q := in[start]
	for j := start + 1; j < len(in); j++ {
		switch in[j] {
		case '\\':
			j++
		case q:
			return j
		case '\n':
			return -1
		}
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
