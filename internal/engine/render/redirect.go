package render

import (
	"bytes"
	"html/template"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
)

var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Redirecting…</title>
<link rel="canonical" href="{{.}}">
<meta http-equiv="refresh" content="0; url={{.}}">
<meta name="robots" content="noindex">
</head>
<body><p>This page has moved to <a href="{{.}}">{{.}}</a>.</p></body>
</html>
`))

// redirectHTML renders a page that forwards the browser to target.
func redirectHTML(target string) ([]byte, error) {
	var buf bytes.Buffer
	if err := redirectPage.Execute(&buf, target); err != nil {
		return nil, zerr.Wrap(domain.ErrTemplate, "redirect page: "+err.Error())
	}
	return buf.Bytes(), nil
}

// aliasPath maps a redirect_from entry to the output file it occupies.
// Directory-like entries get an index.html: "/old/post/" and "/old/post" both
// become old/post/index.html, while "/old.html" stays old.html.
func aliasPath(alias string) (string, error) {
	p := strings.TrimPrefix(strings.TrimSpace(alias), "/")
	dir := p == "" || strings.HasSuffix(p, "/") || path.Ext(p) == ""
	p = path.Clean(p)
	if dir {
		p = path.Join(p, "index.html")
	}
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return "", zerr.With(zerr.Wrap(domain.ErrTemplate, "redirect_from entry leaves the output directory"), "alias", alias)
	}
	return p, nil
}

// redirectTarget resolves redirect_to. URLs and absolute paths are kept;
// anything else names a page of the site, e.g. "posts/new.md".
func (h *DocumentHandler) redirectTarget(to string) string {
	to = strings.TrimSpace(to)
	if strings.Contains(to, "://") || strings.HasPrefix(to, "/") {
		return to
	}
	return URL(h.site.BaseURL, OutputPath(domain.NewNodeID(path.Clean(to))))
}
