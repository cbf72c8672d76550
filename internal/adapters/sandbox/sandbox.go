// Package sandbox runs untrusted plugins as confined child processes.
//
// Each invocation gets a fresh process in its own process group with an empty
// environment and a private working directory. By default the process runs
// under bubblewrap with only the system libraries and its own binary mounted.
// Process isolation instead re-executes the host binary as a launcher (see
// Launch) that confines the plugin with Landlock inside fresh user and network
// namespaces. Either way a plugin that cannot be confined never starts. Node data crosses the boundary
// only as CBOR frames over stdin and stdout (see package wire). Every host call
// the plugin issues is checked against its capability set before it is served.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.trai.ch/press/internal/adapters/sandbox/wire"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Sandbox = (*Sandbox)(nil)

// OutcomeOK labels successful invocations in metrics.
const OutcomeOK = "ok"

// Sandbox implements ports.Sandbox with OS processes.
type Sandbox struct {
	logger       ports.Logger
	metrics      ports.Metrics
	client       *http.Client
	bwrap        string
	launcher     string
	pollInterval time.Duration
}

// Option configures a Sandbox.
type Option func(*Sandbox)

// WithHTTPClient sets the client serving network host calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sandbox) { s.client = c }
}

// WithBwrap overrides bubblewrap discovery. An empty path disables bwrap isolation.
func WithBwrap(path string) Option {
	return func(s *Sandbox) { s.bwrap = path }
}

// WithLauncher overrides the binary re-executed to confine process-isolated
// plugins. It must call Launch before anything else.
func WithLauncher(path string) Option {
	return func(s *Sandbox) { s.launcher = path }
}

// WithPollInterval sets the memory watchdog sampling interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Sandbox) { s.pollInterval = d }
}

// New creates a Sandbox. metrics may be nil.
func New(logger ports.Logger, metrics ports.Metrics, opts ...Option) *Sandbox {
	s := &Sandbox{
		logger:       logger,
		metrics:      metrics,
		client:       &http.Client{Timeout: 30 * time.Second},
		bwrap:        bwrapPath(),
		launcher:     selfPath(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoke runs one plugin call. Plugin failures are returned as
// *domain.SandboxError; cancellation of ctx wraps domain.ErrBuildCancelled.
func (s *Sandbox) Invoke(ctx context.Context, plugin domain.PluginDescriptor, in domain.InputView) (domain.PluginOutput, error) {
	out, err := s.invoke(ctx, plugin, in)

	outcome := OutcomeOK
	var sbErr *domain.SandboxError
	switch {
	case errors.As(err, &sbErr):
		outcome = sbErr.Kind.String()
	case err != nil:
		outcome = "cancelled"
	}
	if s.metrics != nil {
		s.metrics.SandboxOutcome(plugin.Name, outcome)
	}
	if err != nil {
		s.logger.Debug("plugin invocation failed", "plugin", plugin.Name, "node", in.Node.String(), "outcome", outcome)
	}
	return out, err
}

func (s *Sandbox) invoke(ctx context.Context, plugin domain.PluginDescriptor, in domain.InputView) (domain.PluginOutput, error) {
	trap := func(format string, args ...any) error {
		return &domain.SandboxError{Kind: domain.PluginTrap, Plugin: plugin.Name, Detail: fmt.Sprintf(format, args...)}
	}

	if err := ctx.Err(); err != nil {
		return domain.PluginOutput{}, zerr.Wrap(domain.ErrBuildCancelled, "plugin invocation cancelled")
	}

	argv, err := resolveCommand(plugin)
	if err != nil {
		return domain.PluginOutput{}, trap("%v", err)
	}
	// Anything but explicit process isolation runs under bwrap.
	bwrap := plugin.Isolation != domain.IsolationProcess
	switch {
	case bwrap && s.bwrap == "":
		return domain.PluginOutput{}, trap("bwrap isolation requested but bwrap is not installed")
	case !bwrap && s.launcher == "":
		return domain.PluginOutput{}, trap("process isolation has no launcher binary")
	case !bwrap && LandlockABI() < MinLandlockABI:
		return domain.PluginOutput{}, trap("process isolation needs Landlock ABI %d, kernel has %d", MinLandlockABI, LandlockABI())
	}

	workDir, err := os.MkdirTemp("", "press-plugin-*")
	if err != nil {
		return domain.PluginOutput{}, trap("failed to create working directory: %v", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()
	if bwrap {
		argv = bwrapArgs(s.bwrap, workDir, argv)
	} else {
		argv = launchArgs(s.launcher, workDir, argv)
	}

	budgetCtx := ctx
	if plugin.Budget.Timeout > 0 {
		var cancel context.CancelFunc
		budgetCtx, cancel = context.WithTimeout(ctx, plugin.Budget.Timeout)
		defer cancel()
	}

	proc, err := start(argv, workDir, !bwrap)
	if err != nil {
		return domain.PluginOutput{}, trap("%v", err)
	}
	defer proc.kill()

	sess := &session{
		sandbox: s,
		plugin:  plugin,
		in:      in,
		proc:    proc,
		conn:    wire.NewConn(proc.stdout, proc.stdin),
		outputs: make(map[string][]byte),
	}
	return sess.run(ctx, budgetCtx)
}

// selfPath is the running binary, or empty when it cannot be found.
func selfPath() string {
	p, err := os.Executable()
	if err != nil {
		return ""
	}
	return p
}
