package fs

import (
	"path"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
)

// MatchInputs returns the items whose id matches one of the patterns. Patterns
// use path.Match syntax against slash-separated source ids; a pattern without
// a slash also matches by base name, so "*.csv" finds data/sales.csv.
func MatchInputs(patterns []string, items []domain.SourceItem) ([]domain.SourceItem, error) {
	var out []domain.SourceItem
	for _, it := range items {
		if it.Kind == domain.KindPlugin {
			continue
		}
		id := it.ID.String()
		for _, pattern := range patterns {
			ok, err := matchInput(pattern, id)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "bad input pattern"), "pattern", pattern)
			}
			if ok {
				out = append(out, it)
				break
			}
		}
	}
	return out, nil
}

func matchInput(pattern, id string) (bool, error) {
	ok, err := path.Match(pattern, id)
	if err != nil || ok {
		return ok, err
	}
	if !strings.Contains(pattern, "/") {
		return path.Match(pattern, path.Base(id))
	}
	return false, nil
}

// pluginItems creates one derivative item per plugin and matching input.
func pluginItems(site *domain.Site, items []domain.SourceItem) ([]domain.SourceItem, error) {
	var out []domain.SourceItem
	for _, p := range site.Plugins {
		inputs, err := MatchInputs(p.Inputs, items)
		if err != nil {
			return nil, zerr.With(err, "plugin", p.Name)
		}
		if len(inputs) == 0 {
			continue
		}
		cfg := PluginConfig(p)
		for _, in := range inputs {
			out = append(out, domain.SourceItem{
				ID:     domain.PluginNodeID(p.Name, in.ID),
				Kind:   domain.KindPlugin,
				Config: cfg,
				Deps:   []domain.Dependency{{Target: in.ID, Kind: domain.EdgePluginInput}},
			})
		}
	}
	return out, nil
}
