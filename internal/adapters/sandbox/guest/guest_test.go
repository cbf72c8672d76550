package guest_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/sandbox/guest"
	"go.trai.ch/press/internal/adapters/sandbox/wire"
)

// fakeHost plays the host side over in-memory pipes.
type fakeHost struct {
	conn    *wire.Conn
	toGuest *io.PipeWriter
	done    chan error
}

func startGuest(t *testing.T, fn guest.Handler) *fakeHost {
	t.Helper()
	hostR, guestW := io.Pipe()
	guestR, hostW := io.Pipe()

	h := &fakeHost{conn: wire.NewConn(hostR, hostW), toGuest: hostW, done: make(chan error, 1)}
	go func() {
		err := guest.ServeIO(context.Background(), guestR, guestW, fn)
		_ = guestW.Close()
		h.done <- err
	}()
	t.Cleanup(func() { _ = hostW.Close() })
	return h
}

func (h *fakeHost) recv(t *testing.T) *wire.Frame {
	t.Helper()
	f, err := h.conn.Recv()
	require.NoError(t, err)
	return f
}

func TestServeIO_HostCalls(t *testing.T) {
	h := startGuest(t, func(_ context.Context, host *guest.Host, in guest.Input) (guest.Output, error) {
		extra, err := host.ReadInput("data.csv")
		if err != nil {
			return guest.Output{}, err
		}
		if err := host.Log("read %d bytes", len(extra)); err != nil {
			return guest.Output{}, err
		}
		if _, err := host.Env("MISSING"); err == nil {
			return guest.Output{}, errors.New("expected env error")
		}
		content := append(bytes.ToUpper(in.Content), extra...)
		return guest.Output{Content: content, MediaType: "text/plain"}, nil
	})

	require.NoError(t, h.conn.Send(&wire.Frame{Op: wire.OpInvoke, Node: "a.md", Data: []byte("abc")}))

	call := h.recv(t)
	assert.Equal(t, wire.OpReadInput, call.Op)
	assert.Equal(t, "data.csv", call.Target)
	require.NoError(t, h.conn.Send(&wire.Frame{Op: wire.OpReply, Data: []byte("123")}))

	call = h.recv(t)
	assert.Equal(t, wire.OpLog, call.Op)
	assert.Equal(t, "read 3 bytes", string(call.Data))
	require.NoError(t, h.conn.Send(&wire.Frame{Op: wire.OpReply}))

	call = h.recv(t)
	assert.Equal(t, wire.OpEnv, call.Op)
	require.NoError(t, h.conn.Send(&wire.Frame{Op: wire.OpReply, Error: "not configured"}))

	result := h.recv(t)
	assert.Equal(t, wire.OpResult, result.Op)
	assert.Equal(t, "ABC123", string(result.Data))
	assert.Equal(t, "text/plain", result.MediaType)
	assert.NoError(t, <-h.done)
}

func TestServeIO_FaultOnErrorAndPanic(t *testing.T) {
	for name, fn := range map[string]guest.Handler{
		"error": func(context.Context, *guest.Host, guest.Input) (guest.Output, error) {
			return guest.Output{}, errors.New("bad input")
		},
		"panic": func(context.Context, *guest.Host, guest.Input) (guest.Output, error) {
			panic("boom")
		},
	} {
		t.Run(name, func(t *testing.T) {
			h := startGuest(t, fn)
			require.NoError(t, h.conn.Send(&wire.Frame{Op: wire.OpInvoke}))

			f := h.recv(t)
			assert.Equal(t, wire.OpFault, f.Op)
			assert.NotEmpty(t, f.Error)
			assert.Error(t, <-h.done)
		})
	}
}

func TestServeIO_RejectsMissingInvoke(t *testing.T) {
	h := startGuest(t, func(context.Context, *guest.Host, guest.Input) (guest.Output, error) {
		assert.Fail(t, "handler must not run")
		return guest.Output{}, nil
	})
	require.NoError(t, h.conn.Send(&wire.Frame{Op: wire.OpReply}))
	assert.Error(t, <-h.done)
}
