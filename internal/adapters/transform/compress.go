package transform

import (
	"bytes"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Compressor = Gzip{}
	_ ports.Compressor = Zstd{}
)

// zstdEncoder is shared; zstd.Encoder is safe for concurrent EncodeAll calls.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		panic("transform: zstd encoder initialization failed: " + err.Error())
	}
}

// Gzip produces .gz variants at the best compression level.
type Gzip struct{}

// Encoding implements ports.Compressor.
func (Gzip) Encoding() string { return "gzip" }

// Compress implements ports.Compressor.
func (Gzip) Compress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, zerr.Wrap(err, "gzip writer")
	}
	if _, err := w.Write(in); err != nil {
		return nil, zerr.Wrap(err, "gzip write")
	}
	if err := w.Close(); err != nil {
		return nil, zerr.Wrap(err, "gzip close")
	}
	return buf.Bytes(), nil
}

// Zstd produces .zst variants.
type Zstd struct{}

// Encoding implements ports.Compressor.
func (Zstd) Encoding() string { return "zstd" }

// Compress implements ports.Compressor.
func (Zstd) Compress(in []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(in, nil), nil
}

// Extension returns the file suffix for an encoding.
func Extension(encoding string) string {
	switch encoding {
	case "gzip":
		return ".gz"
	case "zstd":
		return ".zst"
	default:
		return "." + encoding
	}
}

// Compressors returns the compressors for the configured encodings, ignoring
// unknown names.
func Compressors(encodings []string) []ports.Compressor {
	var out []ports.Compressor
	for _, enc := range encodings {
		switch enc {
		case "gzip":
			out = append(out, Gzip{})
		case "zstd":
			out = append(out, Zstd{})
		}
	}
	return out
}

var compressible = map[string]bool{
	".html": true, ".htm": true, ".css": true, ".js": true, ".mjs": true,
	".json": true, ".svg": true, ".xml": true, ".txt": true, ".webmanifest": true,
	".map": true, ".wasm": true, ".csv": true,
}

// Compressible reports whether precompression is worth doing for a path.
// Images, archives, and fonts are already compressed.
func Compressible(p string) bool {
	return compressible[strings.ToLower(path.Ext(p))]
}

// Precompress returns the compressed variants of content named after p, keeping
// only variants smaller than the original.
func Precompress(p string, content []byte, compressors []ports.Compressor) (map[string][]byte, error) {
	if !Compressible(p) || len(compressors) == 0 {
		return nil, nil
	}
	out := make(map[string][]byte, len(compressors))
	for _, c := range compressors {
		data, err := c.Compress(content)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrTransform, err.Error()), "encoding", c.Encoding())
		}
		if len(data) < len(content) {
			out[p+Extension(c.Encoding())] = data
		}
	}
	return out, nil
}
