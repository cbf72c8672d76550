package transform

import (
	"bytes"
	"context"
	"image/png"
	"path"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetTransformer = PNGRecompressor{}

// PNGRecompressor re-encodes PNG images at the best compression level and
// keeps the result only when it is smaller.
type PNGRecompressor struct{}

// Name implements ports.AssetTransformer.
func (PNGRecompressor) Name() string { return "png-recompress" }

// Accepts implements ports.AssetTransformer.
func (PNGRecompressor) Accepts(p string) bool {
	return strings.EqualFold(path.Ext(p), ".png")
}

// Transform implements ports.AssetTransformer.
func (PNGRecompressor) Transform(ctx context.Context, in []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(in))
	if err != nil {
		return nil, zerr.Wrap(domain.ErrTransform, "invalid png: "+err.Error())
	}
	if err := ctx.Err(); err != nil {
		return nil, zerr.Wrap(domain.ErrBuildCancelled, err.Error())
	}

	var out bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&out, img); err != nil {
		return nil, zerr.Wrap(domain.ErrTransform, "png encode: "+err.Error())
	}
	if out.Len() >= len(in) {
		return in, nil
	}
	return out.Bytes(), nil
}
