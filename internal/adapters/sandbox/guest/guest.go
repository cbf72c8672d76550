// Package guest is the plugin side of the sandbox protocol. A plugin is a
// standalone program whose main calls Serve:
//
//	func main() {
//		guest.Serve(func(ctx context.Context, h *guest.Host, in guest.Input) (guest.Output, error) {
//			return guest.Output{Content: bytes.ToUpper(in.Content)}, nil
//		})
//	}
//
// Every host call is checked against the plugin's granted capabilities. An
// ungranted call terminates the plugin before it returns.
package guest

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.trai.ch/press/internal/adapters/sandbox/wire"
	"go.trai.ch/zerr"
)

// Input is the copy of node data handed to the plugin.
type Input struct {
	Node    string
	Content []byte
	Params  map[string]string
}

// Output is the result of one invocation.
type Output struct {
	Content   []byte
	MediaType string
}

// Handler transforms one input.
type Handler func(ctx context.Context, h *Host, in Input) (Output, error)

// Host issues host calls on behalf of the plugin.
type Host struct {
	conn *wire.Conn
}

// ReadInput returns a named input granted with read_input.
func (h *Host) ReadInput(name string) ([]byte, error) {
	return h.call(wire.OpReadInput, name, nil)
}

// WriteOutput stores an extra output file next to the primary one.
func (h *Host) WriteOutput(name string, data []byte) error {
	_, err := h.call(wire.OpWriteOutput, name, data)
	return err
}

// Log forwards a message to the host logger.
func (h *Host) Log(format string, args ...any) error {
	_, err := h.call(wire.OpLog, "", []byte(fmt.Sprintf(format, args...)))
	return err
}

// Env returns a configured environment value.
func (h *Host) Env(key string) (string, error) {
	v, err := h.call(wire.OpEnv, key, nil)
	return string(v), err
}

// ReadFile reads a file relative to the site root.
func (h *Host) ReadFile(path string) ([]byte, error) {
	return h.call(wire.OpFilesystem, path, nil)
}

// Fetch retrieves a URL through the host.
func (h *Host) Fetch(url string) ([]byte, error) {
	return h.call(wire.OpNetwork, url, nil)
}

func (h *Host) call(op wire.Op, target string, data []byte) ([]byte, error) {
	if err := h.conn.Send(&wire.Frame{Op: op, Target: target, Data: data}); err != nil {
		return nil, zerr.Wrap(err, "host call failed")
	}
	reply, err := h.conn.Recv()
	if err != nil {
		return nil, zerr.Wrap(err, "host connection lost")
	}
	if reply.Op != wire.OpReply {
		return nil, zerr.With(zerr.New("unexpected frame"), "op", string(reply.Op))
	}
	if reply.Error != "" {
		return nil, zerr.With(zerr.New(reply.Error), "call", string(op))
	}
	return reply.Data, nil
}

// Serve runs fn against the host connected on stdin and stdout and exits the
// process. It never returns.
func Serve(fn Handler) {
	if err := ServeIO(context.Background(), os.Stdin, os.Stdout, fn); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

// ServeIO answers exactly one invocation on r and w. A handler error or panic
// is reported to the host as a fault and returned.
func ServeIO(ctx context.Context, r io.Reader, w io.Writer, fn Handler) error {
	conn := wire.NewConn(r, w)

	first, err := conn.Recv()
	if err != nil {
		return zerr.Wrap(err, "failed to read invocation")
	}
	if first.Op != wire.OpInvoke {
		return zerr.With(zerr.New("expected invoke frame"), "op", string(first.Op))
	}

	out, err := run(ctx, &Host{conn: conn}, Input{Node: first.Node, Content: first.Data, Params: first.Params}, fn)
	if err != nil {
		_ = conn.Send(&wire.Frame{Op: wire.OpFault, Error: err.Error()})
		return err
	}
	return conn.Send(&wire.Frame{Op: wire.OpResult, Data: out.Content, MediaType: out.MediaType})
}

func run(ctx context.Context, h *Host, in Input, fn Handler) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.New("plugin panicked"), "panic", fmt.Sprint(r))
		}
	}()
	return fn(ctx, h, in)
}
