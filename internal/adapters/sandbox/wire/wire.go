// Package wire defines the frames exchanged between the host and a plugin
// process. Frames are CBOR values streamed over the plugin's stdin and stdout.
package wire

import (
	"io"

	"go.trai.ch/press/internal/adapters/codec"
)

// Op identifies the purpose of a frame.
type Op string

const (
	// OpInvoke starts an invocation. Host to plugin, always the first frame.
	OpInvoke Op = "invoke"
	// OpReply answers a host call. Host to plugin.
	OpReply Op = "reply"
	// OpResult carries the final output. Plugin to host, always the last frame.
	OpResult Op = "result"
	// OpFault reports a plugin-side failure. Plugin to host.
	OpFault Op = "fault"

	// OpReadInput requests a named input.
	OpReadInput Op = "read_input"
	// OpWriteOutput stores a named extra output.
	OpWriteOutput Op = "write_output"
	// OpLog forwards a log line.
	OpLog Op = "log"
	// OpEnv reads a configured environment value.
	OpEnv Op = "env"
	// OpFilesystem reads a file below the site root.
	OpFilesystem Op = "filesystem"
	// OpNetwork fetches a URL.
	OpNetwork Op = "network"
)

// IsCall reports whether op is a host call issued by the plugin.
func (op Op) IsCall() bool {
	switch op {
	case OpReadInput, OpWriteOutput, OpLog, OpEnv, OpFilesystem, OpNetwork:
		return true
	default:
		return false
	}
}

// Frame is one protocol message. Fields are used depending on Op.
type Frame struct {
	Op        Op                `cbor:"op"`
	Node      string            `cbor:"node,omitempty"`
	Target    string            `cbor:"target,omitempty"`
	Data      []byte            `cbor:"data,omitempty"`
	Params    map[string]string `cbor:"params,omitempty"`
	MediaType string            `cbor:"media_type,omitempty"`
	Error     string            `cbor:"error,omitempty"`
}

// Conn reads and writes frames on a byte stream pair.
type Conn struct {
	enc *codec.Encoder
	dec *codec.Decoder
}

// NewConn wraps r and w.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{enc: codec.NewEncoder(w), dec: codec.NewDecoder(r)}
}

// Send writes one frame.
func (c *Conn) Send(f *Frame) error {
	return c.enc.Encode(f)
}

// Recv reads the next frame.
func (c *Conn) Recv() (*Frame, error) {
	var f Frame
	if err := c.dec.Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
