package sandbox_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/sandbox"
	"go.trai.ch/press/internal/adapters/sandbox/guest"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/press/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// helperMarker separates test flags from the helper mode in the re-executed
// test binary. The plugin environment is empty, so the mode travels in argv.
const helperMarker = "--press-helper-plugin"

// TestMain lets the test binary double as the launcher that confines
// process-isolated plugins.
func TestMain(m *testing.M) {
	sandbox.Launch()
	os.Exit(m.Run())
}

// TestHelperPlugin is not a real test. It is the plugin process started by
// the tests below.
func TestHelperPlugin(t *testing.T) {
	mode := ""
	for i, arg := range os.Args {
		if arg == helperMarker && i+1 < len(os.Args) {
			mode = os.Args[i+1]
		}
	}
	if mode == "" {
		t.Skip("helper process only")
	}
	guest.Serve(helperModes[mode])
}

var helperModes = map[string]guest.Handler{
	"upper": func(_ context.Context, _ *guest.Host, in guest.Input) (guest.Output, error) {
		return guest.Output{Content: bytes.ToUpper(in.Content), MediaType: "text/plain"}, nil
	},
	"calls": func(_ context.Context, h *guest.Host, in guest.Input) (guest.Output, error) {
		data, err := h.ReadInput("data.csv")
		if err != nil {
			return guest.Output{}, err
		}
		if err := h.Log("processing %s", in.Node); err != nil {
			return guest.Output{}, err
		}
		token, err := h.Env("TOKEN")
		if err != nil {
			return guest.Output{}, err
		}
		file, err := h.ReadFile("data/extra.txt")
		if err != nil {
			return guest.Output{}, err
		}
		if err := h.WriteOutput("extra/summary.txt", []byte("summary")); err != nil {
			return guest.Output{}, err
		}
		if _, err := h.ReadInput("missing"); err == nil {
			return guest.Output{}, errors.New("expected missing input error")
		}
		env := strings.Join(os.Environ(), ",")
		return guest.Output{Content: []byte(fmt.Sprintf("%s|%s|%s|%s|env=%s", data, token, file, in.Params["mode"], env))}, nil
	},
	"fetch": func(_ context.Context, h *guest.Host, in guest.Input) (guest.Output, error) {
		body, err := h.Fetch(string(in.Content))
		return guest.Output{Content: body}, err
	},
	"env": func(_ context.Context, h *guest.Host, _ guest.Input) (guest.Output, error) {
		v, err := h.Env("SECRET")
		return guest.Output{Content: []byte(v)}, err
	},
	"escape": func(_ context.Context, h *guest.Host, _ guest.Input) (guest.Output, error) {
		_, err := h.ReadFile("../outside.txt")
		return guest.Output{}, err
	},
	"ambient": func(_ context.Context, _ *guest.Host, in guest.Input) (guest.Output, error) {
		data, err := os.ReadFile(string(in.Content))
		return guest.Output{Content: data}, err
	},
	"dial": func(_ context.Context, _ *guest.Host, in guest.Input) (guest.Output, error) {
		conn, err := net.DialTimeout("tcp", string(in.Content), time.Second)
		if err != nil {
			return guest.Output{}, err
		}
		_ = conn.Close()
		return guest.Output{Content: []byte("connected")}, nil
	},
	"link": func(_ context.Context, h *guest.Host, _ guest.Input) (guest.Output, error) {
		data, err := h.ReadFile("data/link")
		return guest.Output{Content: data}, err
	},
	"loop": func(context.Context, *guest.Host, guest.Input) (guest.Output, error) {
		for {
			time.Sleep(time.Millisecond)
		}
	},
	"alloc": func(context.Context, *guest.Host, guest.Input) (guest.Output, error) {
		var hold [][]byte
		for {
			chunk := make([]byte, 4<<20)
			for i := range chunk {
				chunk[i] = byte(i)
			}
			hold = append(hold, chunk)
			time.Sleep(time.Millisecond)
		}
	},
	"fault": func(context.Context, *guest.Host, guest.Input) (guest.Output, error) {
		return guest.Output{}, errors.New("cannot parse input")
	},
	"crash": func(context.Context, *guest.Host, guest.Input) (guest.Output, error) {
		os.Exit(3)
		return guest.Output{}, nil
	},
	"silent": func(context.Context, *guest.Host, guest.Input) (guest.Output, error) {
		os.Exit(0)
		return guest.Output{}, nil
	},
}

func helperPlugin(t *testing.T, mode string, grants ...string) domain.PluginDescriptor {
	t.Helper()
	if abi := sandbox.LandlockABI(); abi < sandbox.MinLandlockABI {
		t.Skipf("process isolation needs Landlock ABI %d, kernel has %d", sandbox.MinLandlockABI, abi)
	}
	var caps []domain.Capability
	for _, g := range grants {
		c, err := domain.ParseCapability(g)
		require.NoError(t, err)
		caps = append(caps, c)
	}
	self, err := filepath.Abs(os.Args[0])
	require.NoError(t, err)
	return domain.PluginDescriptor{
		Name:         mode,
		Command:      []string{self, "-test.run=^TestHelperPlugin$", "--", helperMarker, mode},
		Capabilities: domain.NewCapabilitySet(caps...),
		Budget:       domain.ResourceBudget{Timeout: 10 * time.Second},
		Isolation:    domain.IsolationProcess,
		Root:         t.TempDir(),
	}
}

func newSandbox(t *testing.T) (*sandbox.Sandbox, *mocks.MockMetrics) {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	m := mocks.NewMockMetrics(ctrl)
	return sandbox.New(logger, m, sandbox.WithBwrap("")), m
}

func requireSandboxError(t *testing.T, err error, kind domain.SandboxErrorKind) *domain.SandboxError {
	t.Helper()
	var sbErr *domain.SandboxError
	require.True(t, errors.As(err, &sbErr), "expected *domain.SandboxError, got %v", err)
	assert.Equal(t, kind, sbErr.Kind, "detail: %s", sbErr.Detail)
	return sbErr
}

func TestInvoke_Success(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("upper", sandbox.OutcomeOK)

	out, err := sb.Invoke(context.Background(), helperPlugin(t, "upper"), domain.InputView{
		Node:    domain.NewNodeID("a.md"),
		Content: []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(out.Content))
	assert.Equal(t, "text/plain", out.MediaType)
}

func TestInvoke_GrantedHostCalls(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("calls", sandbox.OutcomeOK)

	plugin := helperPlugin(t, "calls",
		"read_input", "log", "env:TOKEN", "filesystem:data", "write_output:extra/summary.txt")
	plugin.Env = map[string]string{"TOKEN": "t0k"}
	require.NoError(t, os.MkdirAll(filepath.Join(plugin.Root, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(plugin.Root, "data", "extra.txt"), []byte("file"), 0o644))
	t.Setenv("PRESS_SANDBOX_LEAK", "visible")

	out, err := sb.Invoke(context.Background(), plugin, domain.InputView{
		Node:    domain.NewNodeID("a.md"),
		Params:  map[string]string{"mode": "fast"},
		Inputs:  map[string][]byte{"data.csv": []byte("1,2")},
		Content: []byte("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1,2|t0k|file|fast|env=", string(out.Content))
	assert.Equal(t, map[string][]byte{"extra/summary.txt": []byte("summary")}, out.Outputs)
}

func TestInvoke_CapabilityViolation(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("env", "CapabilityViolation")

	plugin := helperPlugin(t, "env", "env:OTHER")
	plugin.Env = map[string]string{"SECRET": "s3cret"}

	out, err := sb.Invoke(context.Background(), plugin, domain.InputView{})
	sbErr := requireSandboxError(t, err, domain.CapabilityViolation)
	assert.ErrorIs(t, err, domain.ErrCapabilityViolation)
	assert.Contains(t, sbErr.Detail, "SECRET")
	assert.Empty(t, out.Content)
}

func TestInvoke_FilesystemEscapeIsViolation(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("escape", "CapabilityViolation")

	_, err := sb.Invoke(context.Background(), helperPlugin(t, "escape", "filesystem"), domain.InputView{})
	requireSandboxError(t, err, domain.CapabilityViolation)
}

func TestInvoke_NetworkScopedByHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()

	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("fetch", sandbox.OutcomeOK)
	m.EXPECT().SandboxOutcome("fetch", "CapabilityViolation")

	out, err := sb.Invoke(context.Background(), helperPlugin(t, "fetch", "network:127.0.0.1"),
		domain.InputView{Content: []byte(srv.URL)})
	require.NoError(t, err)
	assert.Equal(t, "remote", string(out.Content))

	_, err = sb.Invoke(context.Background(), helperPlugin(t, "fetch", "network:example.com"),
		domain.InputView{Content: []byte(srv.URL)})
	requireSandboxError(t, err, domain.CapabilityViolation)
}

func TestInvoke_TimeoutIsResourceLimit(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("loop", "ResourceLimitExceeded")

	plugin := helperPlugin(t, "loop")
	plugin.Budget.Timeout = 300 * time.Millisecond

	start := time.Now()
	_, err := sb.Invoke(context.Background(), plugin, domain.InputView{})
	requireSandboxError(t, err, domain.ResourceLimitExceeded)
	assert.ErrorIs(t, err, domain.ErrResourceLimitExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestInvoke_MemoryIsResourceLimit(t *testing.T) {
	if _, err := os.Stat("/proc/self/statm"); err != nil {
		t.Skip("memory watchdog needs /proc")
	}
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("alloc", "ResourceLimitExceeded")

	plugin := helperPlugin(t, "alloc")
	plugin.Budget.MemoryBytes = 64 << 20

	sbErr := requireSandboxError(t, func() error {
		_, err := sb.Invoke(context.Background(), plugin, domain.InputView{})
		return err
	}(), domain.ResourceLimitExceeded)
	assert.Contains(t, sbErr.Detail, "memory")
}

func TestInvoke_Traps(t *testing.T) {
	for mode, detail := range map[string]string{
		"fault":  "cannot parse input",
		"crash":  "exit status 3",
		"silent": "without a result",
	} {
		t.Run(mode, func(t *testing.T) {
			sb, m := newSandbox(t)
			m.EXPECT().SandboxOutcome(mode, "PluginTrap")

			_, err := sb.Invoke(context.Background(), helperPlugin(t, mode), domain.InputView{})
			sbErr := requireSandboxError(t, err, domain.PluginTrap)
			assert.ErrorIs(t, err, domain.ErrPluginTrap)
			assert.Contains(t, sbErr.Detail, detail)
		})
	}
}

func TestInvoke_MissingCommandIsTrap(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("missing", "PluginTrap")

	plugin := helperPlugin(t, "missing")
	plugin.Command = []string{"press-plugin-that-does-not-exist"}
	_, err := sb.Invoke(context.Background(), plugin, domain.InputView{})
	requireSandboxError(t, err, domain.PluginTrap)
}

func TestInvoke_BwrapUnavailableIsTrap(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("upper", "PluginTrap")

	plugin := helperPlugin(t, "upper")
	plugin.Isolation = domain.IsolationBwrap
	_, err := sb.Invoke(context.Background(), plugin, domain.InputView{})
	sbErr := requireSandboxError(t, err, domain.PluginTrap)
	assert.Contains(t, sbErr.Detail, "bwrap")
}

func TestInvoke_DefaultIsolationIsBwrap(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("upper", "PluginTrap")

	plugin := helperPlugin(t, "upper")
	plugin.Isolation = ""
	_, err := sb.Invoke(context.Background(), plugin, domain.InputView{Content: []byte("x")})
	sbErr := requireSandboxError(t, err, domain.PluginTrap)
	assert.Contains(t, sbErr.Detail, "bwrap")
}

func TestInvoke_PluginCannotReadHostFiles(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("s3cret"), 0o644))

	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("ambient", "PluginTrap")

	out, err := sb.Invoke(context.Background(), helperPlugin(t, "ambient"), domain.InputView{Content: []byte(secret)})
	sbErr := requireSandboxError(t, err, domain.PluginTrap)
	assert.Contains(t, sbErr.Detail, "permission denied")
	assert.Empty(t, out.Content)
}

func TestInvoke_PluginCannotDialOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("dial", "PluginTrap")

	_, err = sb.Invoke(context.Background(), helperPlugin(t, "dial"), domain.InputView{Content: []byte(ln.Addr().String())})
	sbErr := requireSandboxError(t, err, domain.PluginTrap)
	assert.Contains(t, sbErr.Detail, "plugin fault")
}

func TestInvoke_FilesystemSymlinkEscapeFails(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("host"), 0o644))

	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("link", "PluginTrap")

	plugin := helperPlugin(t, "link", "filesystem:data")
	require.NoError(t, os.MkdirAll(filepath.Join(plugin.Root, "data"), 0o755))
	require.NoError(t, os.Symlink(outside, filepath.Join(plugin.Root, "data", "link")))

	out, err := sb.Invoke(context.Background(), plugin, domain.InputView{})
	sbErr := requireSandboxError(t, err, domain.PluginTrap)
	assert.Contains(t, sbErr.Detail, "escapes")
	assert.Empty(t, out.Content)
}

func TestInvoke_LogReachesJobSpan(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("calls", sandbox.OutcomeOK)

	var logged bytes.Buffer
	span := mocks.NewMockSpan(gomock.NewController(t))
	span.EXPECT().Write(gomock.Any()).DoAndReturn(logged.Write)

	plugin := helperPlugin(t, "calls",
		"read_input", "log", "env:TOKEN", "filesystem:data", "write_output:extra/summary.txt")
	plugin.Env = map[string]string{"TOKEN": "t0k"}
	require.NoError(t, os.MkdirAll(filepath.Join(plugin.Root, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(plugin.Root, "data", "extra.txt"), []byte("file"), 0o644))

	ctx := ports.ContextWithSpan(context.Background(), span)
	_, err := sb.Invoke(ctx, plugin, domain.InputView{
		Node:   domain.NewNodeID("posts/a.md"),
		Inputs: map[string][]byte{"data.csv": []byte("1,2")},
	})
	require.NoError(t, err)
	assert.Equal(t, "calls: processing posts/a.md\n", logged.String())
}

func TestInvoke_CancelledBuild(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("loop", "cancelled")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	_, err := sb.Invoke(ctx, helperPlugin(t, "loop"), domain.InputView{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildCancelled)
	var sbErr *domain.SandboxError
	assert.False(t, errors.As(err, &sbErr))
}

func TestInvoke_ConcurrentInvocationsAreIndependent(t *testing.T) {
	sb, m := newSandbox(t)
	m.EXPECT().SandboxOutcome("loop", "ResourceLimitExceeded")
	m.EXPECT().SandboxOutcome("upper", sandbox.OutcomeOK)

	slow := helperPlugin(t, "loop")
	slow.Budget.Timeout = 2 * time.Second

	errCh := make(chan error, 1)
	go func() {
		_, err := sb.Invoke(context.Background(), slow, domain.InputView{})
		errCh <- err
	}()

	start := time.Now()
	out, err := sb.Invoke(context.Background(), helperPlugin(t, "upper"), domain.InputView{Content: []byte("b")})
	require.NoError(t, err)
	assert.Equal(t, "B", string(out.Content))
	assert.Less(t, time.Since(start), 2*time.Second)

	requireSandboxError(t, <-errCh, domain.ResourceLimitExceeded)
}
