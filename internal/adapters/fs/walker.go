// Package fs provides file system adapters for walking sources and writing outputs.
package fs

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceWalker = (*Walker)(nil)

// TemplateDir is the source subdirectory holding layouts and partials.
const TemplateDir = "templates"

// DefaultLayout is used by documents that do not name a layout, if it exists.
const DefaultLayout = "page.html"

// defaultIgnores are skipped in addition to .git and .jj.
var defaultIgnores = []string{".*", "*~", "*.swp"}

// Walker enumerates the source tree of a site.
type Walker struct {
	logger ports.Logger
}

// NewWalker creates a new Walker.
func NewWalker(logger ports.Logger) *Walker {
	return &Walker{logger: logger}
}

// WalkFiles yields all files under root, skipping .git, .jj, and entries whose
// name matches one of the ignore patterns. Yielded paths include root.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p != root {
				if skip, action := shouldSkip(d, ignores); skip {
					return action
				}
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if !yield(p) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// shouldSkip reports whether an entry is ignored and what WalkDir should do about it.
func shouldSkip(d fs.DirEntry, ignores []string) (bool, error) {
	name := d.Name()
	if d.IsDir() && (name == ".git" || name == ".jj") {
		return true, filepath.SkipDir
	}
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			if d.IsDir() {
				return true, filepath.SkipDir
			}
			return true, nil
		}
	}
	return false, nil
}

// Walk reads every source file of the site, classifies it, extracts its
// declared dependencies, and appends one derivative item per plugin input match.
// Items are returned in id order.
func (w *Walker) Walk(ctx context.Context, site *domain.Site) ([]domain.SourceItem, error) {
	if _, err := os.Stat(site.SourceDir); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrIO, "source directory not readable"), "path", site.SourceDir)
	}

	var items []domain.SourceItem
	for p := range w.WalkFiles(site.SourceDir, defaultIgnores) {
		if err := ctx.Err(); err != nil {
			return nil, zerr.Wrap(domain.ErrBuildCancelled, err.Error())
		}
		item, err := readItem(site.SourceDir, p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	known := make(map[string]domain.NodeKind, len(items))
	for _, it := range items {
		known[it.ID.String()] = it.Kind
	}
	for i := range items {
		items[i].Config = itemConfig(site, items[i].Kind)
		items[i].Deps = extractDeps(&items[i], known)
	}

	derived, err := pluginItems(site, items)
	if err != nil {
		return nil, err
	}
	items = append(items, derived...)

	slices.SortFunc(items, func(a, b domain.SourceItem) int { return a.ID.Compare(b.ID) })
	if w.logger != nil {
		w.logger.Debug("sources walked", "root", site.SourceDir, "items", len(items), "derived", len(derived))
	}
	return items, nil
}

func readItem(root, p string) (domain.SourceItem, error) {
	info, err := os.Stat(p)
	if err != nil {
		return domain.SourceItem{}, zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", p)
	}
	content, err := os.ReadFile(p) //nolint:gosec // Path comes from walking the source tree
	if err != nil {
		return domain.SourceItem{}, zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return domain.SourceItem{}, zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", p)
	}
	rel = filepath.ToSlash(rel)
	return domain.SourceItem{
		ID:      domain.NewNodeID(rel),
		Kind:    Classify(rel),
		Path:    p,
		Content: content,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Classify maps a slash-separated source path to its node kind.
func Classify(rel string) domain.NodeKind {
	if strings.HasPrefix(rel, TemplateDir+"/") {
		if strings.HasPrefix(rel, TemplateDir+"/partials/") || strings.HasPrefix(path.Base(rel), "_") {
			return domain.KindPartial
		}
		return domain.KindTemplate
	}
	switch strings.ToLower(path.Ext(rel)) {
	case ".md", ".markdown":
		return domain.KindDocument
	default:
		return domain.KindAsset
	}
}

// itemConfig is the site configuration that influences the artifact of a kind.
func itemConfig(site *domain.Site, kind domain.NodeKind) map[string]string {
	switch kind {
	case domain.KindDocument, domain.KindTemplate, domain.KindPartial:
		return map[string]string{
			"site.title":    site.Title,
			"site.base_url": site.BaseURL,
		}
	case domain.KindAsset:
		return map[string]string{
			"precompress": strings.Join(site.Precompress, ","),
		}
	default:
		return nil
	}
}
