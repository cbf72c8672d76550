package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/config"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return config.NewLoader(logger)
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "press.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	content := `
title: Field Notes
base_url: https://example.org/
source: src
parallelism: 3
cache:
  max_entries: 10
  max_bytes: 64m
assets:
  precompress: [zstd, gzip, gzip]
plugins:
  wordcount:
    command: [./bin/press-wordcount, --strict]
    capabilities: [read_input, write_output, "log", "filesystem:data"]
    timeout: 2s
    memory: 32m
    isolation: bwrap
    inputs: ["posts/*.md"]
    params: {mode: fast}
search:
  nats_url: nats://localhost:4222
vcs:
  since: HEAD~1
`
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, content)

	site, err := newLoader(t).Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "Field Notes", site.Title)
	assert.Equal(t, "https://example.org", site.BaseURL)
	assert.Equal(t, filepath.Join(tmpDir, "src"), site.SourceDir)
	assert.Equal(t, filepath.Join(tmpDir, "public"), site.OutputDir)
	assert.Equal(t, filepath.Join(tmpDir, ".press"), site.CacheDir)
	assert.Equal(t, 3, site.Parallelism)
	assert.Equal(t, domain.CacheLimits{MaxEntries: 10, MaxBytes: 64 << 20}, site.Cache)
	assert.Equal(t, []string{"gzip", "zstd"}, site.Precompress)
	assert.Equal(t, "nats://localhost:4222", site.Search.NATSURL)
	assert.Equal(t, domain.DefaultSearchSubject, site.Search.Subject)
	assert.Equal(t, "HEAD~1", site.VCSSince)

	plugin, ok := site.Plugin("wordcount")
	require.True(t, ok)
	assert.Equal(t, []string{filepath.Join(tmpDir, "bin/press-wordcount"), "--strict"}, plugin.Command)
	assert.Equal(t, 2*time.Second, plugin.Budget.Timeout)
	assert.Equal(t, int64(32<<20), plugin.Budget.MemoryBytes)
	assert.Equal(t, domain.IsolationBwrap, plugin.Isolation)
	assert.Equal(t, []string{"posts/*.md"}, plugin.Inputs)
	assert.Equal(t, "fast", plugin.Params["mode"])
	assert.True(t, plugin.Capabilities.Allows(domain.CapFilesystem, "data"))
	assert.False(t, plugin.Capabilities.Allows(domain.CapNetwork, "example.org"))
}

func TestLoad_PluginIsolation(t *testing.T) {
	for isolation, want := range map[string]domain.Isolation{
		"":        domain.IsolationBwrap,
		"bwrap":   domain.IsolationBwrap,
		"process": domain.IsolationProcess,
	} {
		t.Run("isolation="+isolation, func(t *testing.T) {
			tmpDir := t.TempDir()
			content := "plugins: {p: {command: [./bin/p]}}"
			if isolation != "" {
				content = "plugins: {p: {command: [./bin/p], isolation: " + isolation + "}}"
			}
			writeConfig(t, tmpDir, content)

			site, err := newLoader(t).Load(tmpDir)
			require.NoError(t, err)
			plugin, ok := site.Plugin("p")
			require.True(t, ok)
			assert.Equal(t, want, plugin.Isolation)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()

	site, err := newLoader(t).Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "content"), site.SourceDir)
	assert.Equal(t, domain.DefaultCacheMaxEntries, site.Cache.MaxEntries)
	assert.Positive(t, site.Parallelism)
	assert.Empty(t, site.Plugins)
}

func TestLoad_DiscoversParentConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "title: Parent\n")
	nested := filepath.Join(tmpDir, "content", "posts")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	site, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	assert.Equal(t, "Parent", site.Title)
	assert.Equal(t, tmpDir, site.Root)
}

func TestLoad_ExplicitFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Explicit\n"), 0o600))

	site, err := newLoader(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Explicit", site.Title)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "parallelism: 2\n")
	t.Setenv(config.EnvParallelism, "7")
	t.Setenv(config.EnvCacheDir, "/var/cache/press")

	site, err := newLoader(t).Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 7, site.Parallelism)
	assert.Equal(t, "/var/cache/press", site.CacheDir)
}

func TestLoad_DotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "title: x\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("PRESS_NATS_URL=nats://dotenv:4222\n"), 0o600))
	// Registers cleanup that restores the unset state after godotenv sets it.
	t.Setenv(config.EnvNATSURL, "")
	require.NoError(t, os.Unsetenv(config.EnvNATSURL))

	site, err := newLoader(t).Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "nats://dotenv:4222", site.Search.NATSURL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]struct {
		content string
		key     string
	}{
		"bad yaml":          {content: "title: [unterminated", key: "path"},
		"negative workers":  {content: "parallelism: -1", key: "parallelism"},
		"bad precompress":   {content: "assets: {precompress: [brotli]}", key: "encoding"},
		"plugin no command": {content: "plugins: {p: {}}", key: "plugin"},
		"bad capability":    {content: "plugins: {p: {command: [x], capabilities: [teleport]}}", key: "capability"},
		"bad timeout":       {content: "plugins: {p: {command: [x], timeout: soon}}", key: "plugin"},
		"bad isolation":     {content: "plugins: {p: {command: [x], isolation: vm}}", key: "plugin"},
		"bad size":          {content: "cache: {max_bytes: lots}", key: "value"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tc.content)

			_, err := newLoader(t).Load(tmpDir)
			require.Error(t, err)

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok, "expected *zerr.Error, got %T", err)
			assert.Contains(t, zErr.Metadata(), tc.key)
		})
	}
}

func TestParseBytes(t *testing.T) {
	for in, want := range map[string]int64{"512": 512, "64k": 64 << 10, "256M": 256 << 20, "1g": 1 << 30, "2mb": 2 << 20} {
		got, err := config.ParseBytes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "k", "-1m", "1t"} {
		_, err := config.ParseBytes(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig, bad)
	}
}
