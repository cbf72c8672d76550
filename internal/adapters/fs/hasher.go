package fs

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
)

// ComputeFileHash computes the XXHash of a file's content.
func ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// PluginConfig flattens everything about a plugin that affects its output into
// the config map of a derivative item. The plugin binary is hashed so that a
// rebuilt plugin invalidates its derivatives.
func PluginConfig(p domain.PluginDescriptor) map[string]string {
	cfg := map[string]string{
		"plugin.name":      p.Name,
		"plugin.command":   strings.Join(p.Command, "\x1f"),
		"plugin.isolation": string(p.Isolation),
		"plugin.timeout":   p.Budget.Timeout.String(),
		"plugin.memory":    strconv.FormatInt(p.Budget.MemoryBytes, 10),
	}

	grants := p.Capabilities.Grants()
	caps := make([]string, len(grants))
	for i, g := range grants {
		caps[i] = g.String()
	}
	cfg["plugin.capabilities"] = strings.Join(caps, ",")

	for _, k := range sortedKeys(p.Params) {
		cfg["param."+k] = p.Params[k]
	}
	for _, k := range sortedKeys(p.Env) {
		cfg["env."+k] = p.Env[k]
	}

	// Resolved the same way the sandbox resolves it before starting the plugin.
	if len(p.Command) > 0 {
		if bin, err := exec.LookPath(p.Executable()); err == nil {
			if sum, err := ComputeFileHash(bin); err == nil {
				cfg["plugin.binary"] = fmt.Sprintf("%016x", sum)
			}
		}
	}
	return cfg
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
