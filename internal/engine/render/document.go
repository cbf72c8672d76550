package render

import (
	"context"
	"html/template"
	"path"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/frontmatter"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

// SiteInfo is the part of the site configuration visible to templates.
type SiteInfo struct {
	Title   string
	BaseURL string
}

// Link points at another page of the site.
type Link struct {
	ID  string
	URL string
}

// Page is the data a layout executes with.
type Page struct {
	ID        string
	Title     string
	Date      string
	Tags      []string
	Params    map[string]any
	Draft     bool
	Path      string
	URL       string
	Content   template.HTML
	Summary   string
	WordCount int
	CharCount int
	// ReadingTimeSeconds estimates reading time at ReadingWPM.
	ReadingTimeSeconds int
	// TableOfContents lists the headings of the body in document order.
	TableOfContents []Heading
	Authors         []string
	RedirectFrom    []string
	RedirectTo      string
	// Backlinks are the documents that link here.
	Backlinks []Link
	// References are the documents this page links to.
	References []Link
	// Derived maps "plugin:input" to the content of a plugin derivative the
	// document embeds. Plugin output is untrusted and left escaped unless the
	// layout opts in with safeHTML.
	Derived map[string]string
	Site    SiteInfo
	// Build identifies the pass that rendered the page. Cache hits keep the
	// values of the pass that first rendered it.
	Build domain.BuildInfo
}

var _ ports.Handler = (*DocumentHandler)(nil)

// DocumentHandler renders markdown documents into pages.
type DocumentHandler struct {
	markdown    ports.MarkdownRenderer
	templates   ports.TemplateEngine
	site        SiteInfo
	precompress PrecompressFunc
}

// NewDocumentHandler creates a DocumentHandler. precompress may be nil.
func NewDocumentHandler(md ports.MarkdownRenderer, templates ports.TemplateEngine, site SiteInfo, precompress PrecompressFunc) *DocumentHandler {
	return &DocumentHandler{markdown: md, templates: templates, site: site, precompress: precompress}
}

// Build renders the document body, executes its layout, and post-processes the page.
func (h *DocumentHandler) Build(ctx context.Context, req *domain.BuildRequest) (domain.Artifact, error) {
	id := req.Node.ID.String()
	fm, body, err := frontmatter.Split(req.Source)
	if err != nil {
		return domain.Artifact{}, zerr.With(err, "node", id)
	}

	fragment, err := h.markdown.Render(body)
	if err != nil {
		return domain.Artifact{}, zerr.With(err, "node", id)
	}
	text, err := inspect(fragment)
	if err != nil {
		return domain.Artifact{}, zerr.With(err, "node", id)
	}

	out := OutputPath(req.Node.ID)
	page := &Page{
		ID:         id,
		Title:      fm.Title,
		Date:       fm.Date,
		Tags:       fm.Tags,
		Params:     fm.Params,
		Draft:      fm.Draft,
		Path:       out,
		URL:        URL(h.site.BaseURL, out),
		Content:    template.HTML(fragment), //nolint:gosec // Produced by the markdown renderer
		Summary:    text.summary,
		WordCount:  text.words,
		CharCount:  text.chars,
		Backlinks:  h.links(req.Backrefs),
		References: h.links(req.Refs),
		Derived:    make(map[string]string),
		Site:       h.site,
		Build:      req.Build,

		ReadingTimeSeconds: readingTime(text.words),
		TableOfContents:    text.headings,
		Authors:            fm.Authors,
		RedirectFrom:       fm.RedirectFrom,
	}
	if page.Title == "" {
		page.Title = strings.TrimSuffix(path.Base(id), path.Ext(id))
	}
	if fm.RedirectTo != "" {
		page.RedirectTo = h.redirectTarget(fm.RedirectTo)
	}

	var html []byte
	if page.RedirectTo != "" {
		html, err = redirectHTML(page.RedirectTo)
	} else {
		html, err = h.render(ctx, req, page, fragment)
	}
	if err != nil {
		return domain.Artifact{}, zerr.With(err, "node", id)
	}

	meta := map[string]string{
		domain.MetaTitle:     page.Title,
		domain.MetaSummary:   page.Summary,
		domain.MetaWordCount: strconv.Itoa(page.WordCount),
		domain.MetaCharCount: strconv.Itoa(page.CharCount),
		domain.MetaText:      text.content,
		domain.MetaURL:       page.URL,
	}
	if page.RedirectTo != "" {
		meta[domain.MetaRedirectTo] = page.RedirectTo
		delete(meta, domain.MetaText)
	}
	a := domain.Artifact{MediaType: "text/html; charset=utf-8", Content: html, Meta: meta}
	if fm.Draft {
		// Drafts are built and cached but never published.
		meta[domain.MetaDraft] = "true"
		return a, nil
	}
	meta[domain.MetaOutputPath] = out
	if h.precompress != nil {
		if a.Outputs, err = h.precompress(out, html); err != nil {
			return domain.Artifact{}, zerr.With(err, "node", id)
		}
	}
	if err := h.addAliases(&a, out, page); err != nil {
		return domain.Artifact{}, zerr.With(err, "node", id)
	}
	return a, nil
}

// render executes the first layout the document depends on and rewrites the
// links of the result.
func (h *DocumentHandler) render(ctx context.Context, req *domain.BuildRequest, page *Page, fragment []byte) ([]byte, error) {
	assets := make(map[string]string)
	var layout domain.Artifact
	hasLayout := false
	for _, dep := range sortedDeps(req.Deps) {
		a := req.Deps[dep]
		switch a.Kind {
		case domain.KindTemplate:
			if !hasLayout {
				layout, hasLayout = a, true
			}
		case domain.KindAsset:
			if hashed := a.MetaValue(domain.MetaHashedPath); hashed != "" {
				assets[dep.String()] = hashed
			}
		case domain.KindPlugin:
			page.Derived[strings.TrimPrefix(dep.String(), domain.PluginNodePrefix)] = string(a.Content)
		}
	}

	html := fragment
	if hasLayout {
		bundle, err := DecodeBundle(layout)
		if err != nil {
			return nil, err
		}
		html, err = h.templates.Render(ctx, bundle, layout.MetaValue(MetaTemplate), page)
		if err != nil {
			return nil, err
		}
	}
	return postProcess(html, path.Dir(page.ID), assets)
}

// addAliases publishes a redirect page to the document at every
// redirect_from path.
func (h *DocumentHandler) addAliases(a *domain.Artifact, out string, page *Page) error {
	if len(page.RedirectFrom) == 0 {
		return nil
	}
	target := page.RedirectTo
	if target == "" {
		target = page.URL
	}
	body, err := redirectHTML(target)
	if err != nil {
		return err
	}
	if a.Outputs == nil {
		a.Outputs = make(map[string][]byte, len(page.RedirectFrom))
	}
	for _, alias := range page.RedirectFrom {
		p, err := aliasPath(alias)
		if err != nil {
			return err
		}
		if p == out {
			return zerr.With(zerr.Wrap(domain.ErrTemplate, "redirect_from entry is the page itself"), "alias", alias)
		}
		a.Outputs[p] = body
	}
	return nil
}

func (h *DocumentHandler) links(ids []domain.NodeID) []Link {
	if len(ids) == 0 {
		return nil
	}
	links := make([]Link, 0, len(ids))
	for _, id := range ids {
		links = append(links, Link{ID: id.String(), URL: URL(h.site.BaseURL, OutputPath(id))})
	}
	return links
}

func sortedDeps(deps map[domain.NodeID]domain.Artifact) []domain.NodeID {
	ids := make([]domain.NodeID, 0, len(deps))
	for id := range deps {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, domain.NodeID.Compare)
	return ids
}
