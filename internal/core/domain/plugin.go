package domain

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// CapabilityKind names a host operation a plugin may invoke.
type CapabilityKind string

const (
	// CapReadInput reads a named input passed in by the host.
	CapReadInput CapabilityKind = "read_input"
	// CapWriteOutput writes a named extra output.
	CapWriteOutput CapabilityKind = "write_output"
	// CapLog forwards a log line to the host logger.
	CapLog CapabilityKind = "log"
	// CapEnv reads a host environment variable.
	CapEnv CapabilityKind = "env"
	// CapFilesystem reads a file from the source tree through the host.
	CapFilesystem CapabilityKind = "filesystem"
	// CapNetwork fetches a URL through the host.
	CapNetwork CapabilityKind = "network"
)

// ParseCapabilityKind validates a capability name.
func ParseCapabilityKind(s string) (CapabilityKind, error) {
	switch k := CapabilityKind(s); k {
	case CapReadInput, CapWriteOutput, CapLog, CapEnv, CapFilesystem, CapNetwork:
		return k, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown capability"), "capability", s)
	}
}

// Capability is one explicit grant. An empty Target grants every target.
type Capability struct {
	Kind   CapabilityKind `cbor:"kind" yaml:"kind"`
	Target string         `cbor:"target,omitempty" yaml:"target,omitempty"`
}

// ParseCapability parses "kind" or "kind:target".
func ParseCapability(s string) (Capability, error) {
	name, target, _ := strings.Cut(s, ":")
	kind, err := ParseCapabilityKind(name)
	if err != nil {
		return Capability{}, err
	}
	return Capability{Kind: kind, Target: target}, nil
}

func (c Capability) String() string {
	if c.Target == "" {
		return string(c.Kind)
	}
	return string(c.Kind) + ":" + c.Target
}

// CapabilitySet is the closed set of grants of a plugin. The zero value grants nothing.
type CapabilitySet struct {
	grants []Capability
}

// NewCapabilitySet builds a set from explicit grants.
func NewCapabilitySet(grants ...Capability) CapabilitySet {
	gs := slices.Clone(grants)
	slices.SortFunc(gs, func(a, b Capability) int { return strings.Compare(a.String(), b.String()) })
	return CapabilitySet{grants: slices.Compact(gs)}
}

// Allows reports whether a call of the given kind on target is granted.
func (s CapabilitySet) Allows(kind CapabilityKind, target string) bool {
	for _, g := range s.grants {
		if g.Kind == kind && (g.Target == "" || g.Target == target) {
			return true
		}
	}
	return false
}

// AllowsPath is Allows for hierarchical targets: a grant on "data" also
// covers "data/sales.csv".
func (s CapabilitySet) AllowsPath(kind CapabilityKind, p string) bool {
	for _, g := range s.grants {
		if g.Kind != kind {
			continue
		}
		if g.Target == "" || p == g.Target || strings.HasPrefix(p, strings.TrimSuffix(g.Target, "/")+"/") {
			return true
		}
	}
	return false
}

// Grants returns a copy of the grants.
func (s CapabilitySet) Grants() []Capability {
	return slices.Clone(s.grants)
}

// Isolation selects how a plugin process is confined.
type Isolation string

const (
	// IsolationBwrap runs the plugin under bubblewrap with only the system
	// libraries and its own binary mounted. It is the default.
	IsolationBwrap Isolation = "bwrap"
	// IsolationProcess confines the plugin with Landlock inside fresh user and
	// network namespaces, for hosts without bubblewrap.
	IsolationProcess Isolation = "process"
)

// ResourceBudget bounds one plugin invocation.
type ResourceBudget struct {
	Timeout     time.Duration
	MemoryBytes int64
}

// PluginDescriptor identifies a sandboxed transformation module.
type PluginDescriptor struct {
	Name         string
	Command      []string
	Capabilities CapabilitySet
	Budget       ResourceBudget
	Isolation    Isolation
	// Inputs are source globs whose matches become plugin derivative nodes.
	Inputs []string
	// Params are passed to every invocation alongside the input.
	Params map[string]string
	// Env is the only environment reachable through the env capability.
	Env map[string]string
	// Root bounds filesystem capability targets.
	Root string
}

// Executable returns the plugin binary path. A relative path with a directory
// part is anchored at Root; a bare name is returned unchanged for PATH lookup.
func (p PluginDescriptor) Executable() string {
	if len(p.Command) == 0 {
		return ""
	}
	name := p.Command[0]
	if filepath.IsAbs(name) || filepath.Base(name) == name {
		return name
	}
	return filepath.Join(p.Root, name)
}

// InputView is the copy of node data handed across the sandbox boundary.
type InputView struct {
	Node    NodeID            `cbor:"node"`
	Content []byte            `cbor:"content"`
	Params  map[string]string `cbor:"params,omitempty"`
	// Inputs are reachable only through the read_input capability.
	Inputs map[string][]byte `cbor:"-"`
}

// PluginOutput is the result of a successful invocation.
type PluginOutput struct {
	Content   []byte
	MediaType string
	Outputs   map[string][]byte
}

// PluginNodePrefix starts the id of every plugin derivative node.
const PluginNodePrefix = "plugin:"

// PluginNodeID names the derivative of input produced by plugin.
func PluginNodeID(plugin string, input NodeID) NodeID {
	return NewNodeID(PluginNodePrefix + plugin + ":" + input.String())
}

// ParsePluginNodeID splits a derivative id into plugin name and input.
func ParsePluginNodeID(id NodeID) (plugin string, input NodeID, ok bool) {
	rest, found := strings.CutPrefix(id.String(), PluginNodePrefix)
	if !found {
		return "", NodeID{}, false
	}
	name, in, found := strings.Cut(rest, ":")
	if !found || name == "" || in == "" {
		return "", NodeID{}, false
	}
	return name, NewNodeID(in), true
}
