package fs

import (
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/frontmatter"
)

var (
	// [text](target "title") and ![alt](target).
	mdLinkRe = regexp.MustCompile(`\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	// Raw HTML inside markdown.
	htmlRefRe = regexp.MustCompile(`(?i)\b(?:src|href)\s*=\s*"([^"]+)"`)
	// {{template "name" .}} and {{block "name" .}}.
	tmplRefRe = regexp.MustCompile(`\{\{-?\s*(?:template|block)\s+"([^"]+)"`)
)

// extractDeps returns the declared dependencies of an item, deduplicated and
// sorted. known maps every source id to its kind.
func extractDeps(item *domain.SourceItem, known map[string]domain.NodeKind) []domain.Dependency {
	var deps []domain.Dependency
	switch item.Kind {
	case domain.KindDocument:
		deps = documentDeps(item, known)
	case domain.KindTemplate, domain.KindPartial:
		deps = templateDeps(item, known)
	}
	slices.SortFunc(deps, func(a, b domain.Dependency) int {
		if c := a.Target.Compare(b.Target); c != 0 {
			return c
		}
		return int(a.Kind) - int(b.Kind)
	})
	return slices.Compact(deps)
}

func documentDeps(item *domain.SourceItem, known map[string]domain.NodeKind) []domain.Dependency {
	fm, body, err := frontmatter.Split(item.Content)
	if err != nil {
		// The document handler reports the error.
		body = item.Content
	}

	var deps []domain.Dependency
	if layout := layoutOf(fm, known); layout != "" {
		deps = append(deps, domain.Dependency{Target: domain.NewNodeID(layout), Kind: domain.EdgeTemplateInclude})
	}

	dir := path.Dir(item.ID.String())
	refs := collect(mdLinkRe, body)
	refs = append(refs, collect(htmlRefRe, body)...)
	for _, ref := range refs {
		target, ok := ResolveLink(dir, ref)
		if !ok {
			continue
		}
		target = documentFor(target, known)
		switch kind, exists := known[target]; {
		case exists && kind == domain.KindAsset:
			deps = append(deps, domain.Dependency{Target: domain.NewNodeID(target), Kind: domain.EdgeAssetReference})
		case exists && kind == domain.KindDocument, !exists:
			// Missing targets stay as soft edges so they surface as broken links.
			deps = append(deps, domain.Dependency{Target: domain.NewNodeID(target), Kind: domain.EdgeContentReference})
		}
	}

	for _, d := range fm.Derived {
		name, input, ok := strings.Cut(d, ":")
		if !ok || name == "" || input == "" {
			continue
		}
		deps = append(deps, domain.Dependency{
			Target: domain.PluginNodeID(name, domain.NewNodeID(path.Clean(input))),
			Kind:   domain.EdgeAssetReference,
		})
	}
	return deps
}

// documentFor maps an output-style link (about.html, posts/) to the document
// that produces it when the link itself names no source.
func documentFor(target string, known map[string]domain.NodeKind) string {
	if _, ok := known[target]; ok {
		return target
	}
	candidates := []string{path.Join(target, "index.md")}
	if ext := path.Ext(target); ext == ".html" || ext == ".htm" {
		candidates = append(candidates, strings.TrimSuffix(target, ext)+".md")
	}
	for _, c := range candidates {
		if known[c] == domain.KindDocument {
			return c
		}
	}
	return target
}

func layoutOf(fm frontmatter.Frontmatter, known map[string]domain.NodeKind) string {
	if fm.Layout != "" {
		return path.Join(TemplateDir, fm.Layout)
	}
	def := path.Join(TemplateDir, DefaultLayout)
	if _, ok := known[def]; ok {
		return def
	}
	return ""
}

func templateDeps(item *domain.SourceItem, known map[string]domain.NodeKind) []domain.Dependency {
	var deps []domain.Dependency
	for _, name := range collect(tmplRefRe, item.Content) {
		target := path.Join(TemplateDir, name)
		// Names without a file are blocks defined inline.
		if _, ok := known[target]; !ok {
			continue
		}
		deps = append(deps, domain.Dependency{Target: domain.NewNodeID(target), Kind: domain.EdgeTemplateInclude})
	}
	return deps
}

func collect(re *regexp.Regexp, src []byte) []string {
	matches := re.FindAllSubmatch(src, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, string(m[1]))
	}
	return out
}

// ResolveLink maps a link found in a document under dir to a source id.
// External links, fragments, and links leaving the source tree are rejected.
func ResolveLink(dir, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	p := u.Path
	if strings.HasPrefix(p, "/") {
		p = path.Clean(strings.TrimPrefix(p, "/"))
	} else {
		p = path.Join(dir, p)
	}
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, true
}
