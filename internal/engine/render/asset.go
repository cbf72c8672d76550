package render

import (
	"context"
	"errors"
	"maps"
	"mime"
	"path"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Handler = (*AssetHandler)(nil)

// AssetHandler runs static files through the trusted transformer chain and
// publishes them under their own path and a content-hashed name.
type AssetHandler struct {
	transformers []ports.AssetTransformer
	precompress  PrecompressFunc
}

// NewAssetHandler creates an AssetHandler. precompress may be nil.
func NewAssetHandler(transformers []ports.AssetTransformer, precompress PrecompressFunc) *AssetHandler {
	return &AssetHandler{transformers: transformers, precompress: precompress}
}

// Build transforms the asset.
func (h *AssetHandler) Build(ctx context.Context, req *domain.BuildRequest) (domain.Artifact, error) {
	p := req.Node.ID.String()
	content := req.Source
	for _, t := range h.transformers {
		if !t.Accepts(p) {
			continue
		}
		out, err := t.Transform(ctx, content)
		if err != nil {
			if !errors.Is(err, domain.ErrTransform) {
				err = zerr.Wrap(domain.ErrTransform, err.Error())
			}
			return domain.Artifact{}, zerr.With(zerr.With(err, "transformer", t.Name()), "node", p)
		}
		content = out
	}

	hashed := HashedPath(p, content)
	outputs := map[string][]byte{hashed: content}
	if h.precompress != nil {
		for _, name := range []string{p, hashed} {
			variants, err := h.precompress(name, content)
			if err != nil {
				return domain.Artifact{}, zerr.With(err, "node", p)
			}
			maps.Copy(outputs, variants)
		}
	}

	return domain.Artifact{
		MediaType: MediaType(p),
		Content:   content,
		Meta: map[string]string{
			domain.MetaOutputPath: p,
			domain.MetaHashedPath: hashed,
		},
		Outputs: outputs,
	}, nil
}

// HashedPath inserts the first ten hex digits of the xxhash of content before
// the extension: css/site.css becomes css/site.0123456789.css.
func HashedPath(p string, content []byte) string {
	sum := strconv.FormatUint(xxhash.Sum64(content), 16)
	sum = strings.Repeat("0", 16-len(sum)) + sum
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + "." + sum[:10] + ext
}

// MediaType guesses the media type of a path from its extension.
func MediaType(p string) string {
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}
