// Package config provides the configuration loader for press.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment overrides applied after press.yaml.
const (
	EnvParallelism = "PRESS_PARALLELISM"
	EnvNATSURL     = "PRESS_NATS_URL"
	EnvCacheDir    = "PRESS_CACHE_DIR"
	EnvMetricsAddr = "PRESS_METRICS_ADDR"
)

const (
	defaultPluginTimeout = 10 * time.Second
	defaultPluginMemory  = 256 << 20
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration. path may name press.yaml directly or a
// directory from which press.yaml is searched upwards. A missing file yields
// the defaults rooted at the directory.
func (l *Loader) Load(path string) (*domain.Site, error) {
	configPath, root, err := l.findConfiguration(path)
	if err != nil {
		return nil, err
	}

	// .env only fills variables that are not already set.
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.Logger.Warn("ignoring unreadable .env", "error", err)
	}

	var pressfile Pressfile
	if configPath != "" {
		if err := readAndUnmarshalYAML(configPath, &pressfile); err != nil {
			return nil, err
		}
	} else {
		l.Logger.Debug("no press.yaml found, using defaults", "root", root)
	}

	site, err := buildSite(root, &pressfile)
	if err != nil {
		return nil, zerr.With(err, "config", configPath)
	}
	if err := applyEnv(site); err != nil {
		return nil, err
	}
	return site, nil
}

func (l *Loader) findConfiguration(path string) (configPath, root string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, "failed to resolve config path"), "path", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "config path not found"), "path", abs)
	}
	if !info.IsDir() {
		return abs, filepath.Dir(abs), nil
	}

	for current := abs; ; {
		candidate := filepath.Join(current, domain.DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			// Reached root
			return "", abs, nil
		}
		current = parent
	}
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // path is provided by user
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read config file"), "path", configPath)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, err.Error()), "path", configPath)
	}
	return nil
}

func buildSite(root string, pf *Pressfile) (*domain.Site, error) {
	site := domain.DefaultSite(root)

	if pf.Title != "" {
		site.Title = pf.Title
	}
	site.BaseURL = strings.TrimSuffix(pf.BaseURL, "/")
	site.SourceDir = resolveDir(root, pf.Source, domain.DefaultSourceDir)
	site.OutputDir = resolveDir(root, pf.Output, domain.DefaultOutputDir)
	site.CacheDir = resolveDir(root, pf.CacheDir, domain.DefaultCacheDir)

	if pf.Parallelism < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "parallelism must not be negative"), "parallelism", pf.Parallelism)
	}
	if pf.Parallelism > 0 {
		site.Parallelism = pf.Parallelism
	}

	if pf.Cache.MaxEntries < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "cache.max_entries must not be negative"), "max_entries", pf.Cache.MaxEntries)
	}
	if pf.Cache.MaxEntries > 0 {
		site.Cache.MaxEntries = pf.Cache.MaxEntries
	}
	if pf.Cache.MaxBytes != "" {
		n, err := ParseBytes(pf.Cache.MaxBytes)
		if err != nil {
			return nil, err
		}
		site.Cache.MaxBytes = n
	}

	for _, enc := range canonicalizeStrings(pf.Assets.Precompress) {
		if enc != "gzip" && enc != "zstd" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported precompression"), "encoding", enc)
		}
		site.Precompress = append(site.Precompress, enc)
	}

	names := make([]string, 0, len(pf.Plugins))
	for name := range pf.Plugins {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		desc, err := buildPlugin(root, name, pf.Plugins[name])
		if err != nil {
			return nil, err
		}
		site.Plugins = append(site.Plugins, desc)
	}

	site.Search.NATSURL = pf.Search.NATSURL
	if pf.Search.Subject != "" {
		site.Search.Subject = pf.Search.Subject
	}
	site.MetricsAddr = pf.Metrics.Addr
	site.VCSSince = pf.VCS.Since
	return site, nil
}

func buildPlugin(root, name string, dto PluginDTO) (domain.PluginDescriptor, error) {
	invalid := func(msg string) error {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, msg), "plugin", name)
	}

	if strings.ContainsAny(name, ": /") || name == "" {
		return domain.PluginDescriptor{}, invalid("plugin names must not contain ':', '/' or spaces")
	}
	if len(dto.Command) == 0 {
		return domain.PluginDescriptor{}, invalid("plugin command is required")
	}

	grants := make([]domain.Capability, 0, len(dto.Capabilities))
	for _, raw := range canonicalizeStrings(dto.Capabilities) {
		c, err := domain.ParseCapability(raw)
		if err != nil {
			return domain.PluginDescriptor{}, zerr.With(err, "plugin", name)
		}
		grants = append(grants, c)
	}

	budget := domain.ResourceBudget{Timeout: defaultPluginTimeout, MemoryBytes: defaultPluginMemory}
	if dto.Timeout != "" {
		d, err := time.ParseDuration(dto.Timeout)
		if err != nil || d <= 0 {
			return domain.PluginDescriptor{}, invalid("invalid plugin timeout")
		}
		budget.Timeout = d
	}
	if dto.Memory != "" {
		n, err := ParseBytes(dto.Memory)
		if err != nil {
			return domain.PluginDescriptor{}, zerr.With(err, "plugin", name)
		}
		budget.MemoryBytes = n
	}

	isolation := domain.IsolationBwrap
	switch dto.Isolation {
	case "", string(domain.IsolationBwrap):
	case string(domain.IsolationProcess):
		isolation = domain.IsolationProcess
	default:
		return domain.PluginDescriptor{}, invalid("isolation must be process or bwrap")
	}

	command := slices.Clone(dto.Command)
	if !filepath.IsAbs(command[0]) && strings.ContainsRune(command[0], '/') {
		command[0] = filepath.Join(root, command[0])
	}

	return domain.PluginDescriptor{
		Name:         name,
		Command:      command,
		Capabilities: domain.NewCapabilitySet(grants...),
		Budget:       budget,
		Isolation:    isolation,
		Inputs:       canonicalizeStrings(dto.Inputs),
		Params:       dto.Params,
		Env:          dto.Env,
		Root:         root,
	}, nil
}

func applyEnv(site *domain.Site) error {
	if v := strings.TrimSpace(os.Getenv(EnvParallelism)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid parallelism override"), EnvParallelism, v)
		}
		site.Parallelism = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvNATSURL)); v != "" {
		site.Search.NATSURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheDir)); v != "" {
		site.CacheDir = resolveDir(site.Root, v, domain.DefaultCacheDir)
	}
	if v := strings.TrimSpace(os.Getenv(EnvMetricsAddr)); v != "" {
		site.MetricsAddr = v
	}
	return nil
}

func resolveDir(root, configured, fallback string) string {
	dir := configured
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// ParseBytes parses sizes such as "512", "64k", "256m" or "1g".
func ParseBytes(s string) (int64, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimSuffix(raw, "b")
	mult := int64(1)
	if raw != "" {
		switch raw[len(raw)-1] {
		case 'k':
			mult = 1 << 10
		case 'm':
			mult = 1 << 20
		case 'g':
			mult = 1 << 30
		}
		if mult > 1 {
			raw = raw[:len(raw)-1]
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid size"), "value", s)
	}
	return n * mult, nil
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}

	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
