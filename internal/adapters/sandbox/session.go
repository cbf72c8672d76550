package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"go.trai.ch/press/internal/adapters/sandbox/wire"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// maxFetchBytes bounds a network response handed to a plugin.
	maxFetchBytes = 8 << 20
	// maxReadBytes bounds a file handed to a plugin.
	maxReadBytes = 32 << 20
)

// session drives the frame exchange of one invocation.
type session struct {
	sandbox *Sandbox
	plugin  domain.PluginDescriptor
	in      domain.InputView
	proc    *process
	conn    *wire.Conn
	outputs map[string][]byte
}

type received struct {
	frame *wire.Frame
	err   error
}

func (ss *session) fail(kind domain.SandboxErrorKind, format string, args ...any) error {
	ss.proc.kill()
	return &domain.SandboxError{Kind: kind, Plugin: ss.plugin.Name, Detail: fmt.Sprintf(format, args...)}
}

// run sends the invocation and serves host calls until the plugin reports a
// result, fails, or runs out of budget. parent distinguishes cancellation of
// the build from the plugin's own deadline.
func (ss *session) run(parent, budget context.Context) (domain.PluginOutput, error) {
	watchCtx, stopWatch := context.WithCancel(budget)
	defer stopWatch()

	memExceeded := make(chan int64, 1)
	if limit := ss.plugin.Budget.MemoryBytes; limit > 0 {
		go watchMemory(watchCtx, ss.proc.pid(), limit, ss.sandbox.pollInterval, memExceeded)
	}

	// One writer keeps frames whole even if the plugin stops reading.
	outbox := make(chan *wire.Frame, 1)
	writeErr := make(chan error, 1)
	go func() {
		for f := range outbox {
			if err := ss.conn.Send(f); err != nil {
				writeErr <- err
				return
			}
		}
	}()
	defer close(outbox)

	frames := make(chan received)
	go func() {
		for {
			f, err := ss.conn.Recv()
			select {
			case frames <- received{frame: f, err: err}:
			case <-watchCtx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	outbox <- &wire.Frame{Op: wire.OpInvoke, Node: ss.in.Node.String(), Data: ss.in.Content, Params: ss.in.Params}

	for {
		select {
		case <-budget.Done():
			if parent.Err() != nil {
				ss.proc.kill()
				return domain.PluginOutput{}, zerr.Wrap(domain.ErrBuildCancelled, "plugin invocation cancelled")
			}
			return domain.PluginOutput{}, ss.fail(domain.ResourceLimitExceeded,
				"wall-clock budget of %s exceeded", ss.plugin.Budget.Timeout)

		case rss := <-memExceeded:
			return domain.PluginOutput{}, ss.fail(domain.ResourceLimitExceeded,
				"memory budget of %d bytes exceeded (rss %d)", ss.plugin.Budget.MemoryBytes, rss)

		case <-writeErr:
			return domain.PluginOutput{}, ss.exited(budget)

		case r := <-frames:
			if r.err != nil {
				if errors.Is(r.err, io.EOF) || errors.Is(r.err, os.ErrClosed) {
					return domain.PluginOutput{}, ss.exited(budget)
				}
				return domain.PluginOutput{}, ss.fail(domain.PluginTrap, "protocol violation: %v", r.err)
			}

			f := r.frame
			switch {
			case f.Op == wire.OpResult:
				ss.proc.kill()
				return domain.PluginOutput{Content: f.Data, MediaType: f.MediaType, Outputs: ss.outputs}, nil
			case f.Op == wire.OpFault:
				return domain.PluginOutput{}, ss.fail(domain.PluginTrap, "plugin fault: %s", f.Error)
			case f.Op.IsCall():
				if !ss.granted(f) {
					return domain.PluginOutput{}, ss.fail(domain.CapabilityViolation,
						"%s %q not granted", f.Op, f.Target)
				}
				reply := ss.serve(budget, f)
				select {
				case outbox <- reply:
				case <-writeErr:
					return domain.PluginOutput{}, ss.exited(budget)
				case <-budget.Done():
				}
			default:
				return domain.PluginOutput{}, ss.fail(domain.PluginTrap, "protocol violation: unexpected %q frame", f.Op)
			}
		}
	}
}

// exited reports a plugin that closed its side of the protocol without a result.
func (ss *session) exited(budget context.Context) error {
	select {
	case <-ss.proc.exited:
	case <-budget.Done():
	}
	ss.proc.kill()
	if ss.proc.err == nil {
		return &domain.SandboxError{Kind: domain.PluginTrap, Plugin: ss.plugin.Name,
			Detail: "protocol violation: plugin exited without a result"}
	}
	return &domain.SandboxError{Kind: domain.PluginTrap, Plugin: ss.plugin.Name, Detail: ss.proc.exitDetail()}
}

// granted checks a host call against the capability set.
func (ss *session) granted(f *wire.Frame) bool {
	caps := ss.plugin.Capabilities
	switch f.Op {
	case wire.OpReadInput:
		return caps.Allows(domain.CapReadInput, f.Target)
	case wire.OpWriteOutput:
		return caps.Allows(domain.CapWriteOutput, f.Target)
	case wire.OpLog:
		return caps.Allows(domain.CapLog, "")
	case wire.OpEnv:
		return caps.Allows(domain.CapEnv, f.Target)
	case wire.OpFilesystem:
		p := path.Clean(filepath.ToSlash(f.Target))
		return filepath.IsLocal(p) && caps.AllowsPath(domain.CapFilesystem, p)
	case wire.OpNetwork:
		host := ""
		if u, err := url.Parse(f.Target); err == nil {
			host = u.Hostname()
		}
		return caps.Allows(domain.CapNetwork, host)
	default:
		return false
	}
}

// serve answers a granted host call. Failures go back to the plugin as reply
// errors; they do not end the invocation.
func (ss *session) serve(ctx context.Context, f *wire.Frame) *wire.Frame {
	data, err := ss.dispatch(ctx, f)
	if err != nil {
		return &wire.Frame{Op: wire.OpReply, Error: err.Error()}
	}
	return &wire.Frame{Op: wire.OpReply, Data: data}
}

func (ss *session) dispatch(ctx context.Context, f *wire.Frame) ([]byte, error) {
	switch f.Op {
	case wire.OpReadInput:
		data, ok := ss.in.Inputs[f.Target]
		if !ok {
			return nil, fmt.Errorf("no input named %q", f.Target)
		}
		return data, nil

	case wire.OpWriteOutput:
		if !filepath.IsLocal(f.Target) {
			return nil, fmt.Errorf("output name %q is not a local path", f.Target)
		}
		ss.outputs[filepath.ToSlash(f.Target)] = f.Data
		return nil, nil

	case wire.OpLog:
		ss.sandbox.logger.Info("plugin: "+string(f.Data), "plugin", ss.plugin.Name, "node", ss.in.Node.String())
		if span, ok := ports.SpanFromContext(ctx); ok {
			_, _ = fmt.Fprintf(span, "%s: %s\n", ss.plugin.Name, f.Data)
		}
		return nil, nil

	case wire.OpEnv:
		v, ok := ss.plugin.Env[f.Target]
		if !ok {
			return nil, fmt.Errorf("environment value %q is not configured", f.Target)
		}
		return []byte(v), nil

	case wire.OpFilesystem:
		return readFile(ss.plugin.Root, path.Clean(filepath.ToSlash(f.Target)))

	case wire.OpNetwork:
		return ss.fetch(ctx, f.Target)
	}
	return nil, fmt.Errorf("unsupported call %q", f.Op)
}

// readFile reads name below root. Symlinks and ".." that leave root fail.
func readFile(root, name string) ([]byte, error) {
	r, err := os.OpenRoot(root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	f, err := r.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", name)
	}
	if info.Size() > maxReadBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxReadBytes)
	}
	return io.ReadAll(io.LimitReader(f, maxReadBytes))
}

func (ss *session) fetch(ctx context.Context, target string) ([]byte, error) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("unsupported url %q", target)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := ss.sandbox.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch %s: %s", u.Redacted(), resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
}
