package domain

import "runtime"

// Default locations and limits, relative to the project root.
const (
	DefaultConfigFile      = "press.yaml"
	DefaultSourceDir       = "content"
	DefaultOutputDir       = "public"
	DefaultCacheDir        = ".press"
	DefaultCacheMaxEntries = 4096
	DefaultCacheMaxBytes   = 256 << 20
	DefaultSearchSubject   = "press.search.documents"
)

// CacheLimits bounds the in-memory tier of the artifact cache.
type CacheLimits struct {
	MaxEntries int
	MaxBytes   int64
}

// SearchConfig configures the search-indexer sink.
type SearchConfig struct {
	NATSURL string
	Subject string
}

// Site is the resolved project configuration.
type Site struct {
	Root        string
	Title       string
	BaseURL     string
	SourceDir   string
	OutputDir   string
	CacheDir    string
	Parallelism int
	Cache       CacheLimits
	Precompress []string
	Plugins     []PluginDescriptor
	Search      SearchConfig
	MetricsAddr string
	VCSSince    string
}

// DefaultSite returns a Site populated with defaults.
func DefaultSite(root string) *Site {
	return &Site{
		Root:        root,
		Title:       "press",
		SourceDir:   DefaultSourceDir,
		OutputDir:   DefaultOutputDir,
		CacheDir:    DefaultCacheDir,
		Parallelism: runtime.NumCPU(),
		Cache: CacheLimits{
			MaxEntries: DefaultCacheMaxEntries,
			MaxBytes:   DefaultCacheMaxBytes,
		},
		Search: SearchConfig{Subject: DefaultSearchSubject},
	}
}

// Plugin returns the descriptor with the given name.
func (s *Site) Plugin(name string) (PluginDescriptor, bool) {
	for _, p := range s.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return PluginDescriptor{}, false
}
