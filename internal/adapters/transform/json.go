package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strings"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetTransformer = JSONCompactor{}

// JSONCompactor removes insignificant whitespace from JSON and web manifests.
// Invalid JSON fails the asset.
type JSONCompactor struct{}

// Name implements ports.AssetTransformer.
func (JSONCompactor) Name() string { return "json-compact" }

// Accepts implements ports.AssetTransformer.
func (JSONCompactor) Accepts(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".webmanifest":
		return true
	default:
		return false
	}
}

// Transform implements ports.AssetTransformer.
func (JSONCompactor) Transform(_ context.Context, in []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Compact(&out, in); err != nil {
		return nil, zerr.Wrap(domain.ErrTransform, "invalid json: "+err.Error())
	}
	return out.Bytes(), nil
}
