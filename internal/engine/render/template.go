package render

import (
	"context"
	"maps"

	"go.trai.ch/press/internal/adapters/codec" //nolint:depguard // Template bundles use the canonical CBOR encoding
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

// BundleMediaType marks the artifact of a template: a CBOR map from template
// name to source holding the template and everything it includes.
const BundleMediaType = "application/vnd.press.template-bundle+cbor"

// MetaTemplate is the artifact metadata key holding the template name.
const MetaTemplate = "template"

var _ ports.Handler = (*TemplateHandler)(nil)

// TemplateHandler checks layouts and partials. It runs nothing; documents
// execute the bundle it produces.
type TemplateHandler struct {
	engine ports.TemplateEngine
}

// NewTemplateHandler creates a TemplateHandler.
func NewTemplateHandler(engine ports.TemplateEngine) *TemplateHandler {
	return &TemplateHandler{engine: engine}
}

// Build merges the template with the bundles of its includes and parses the result.
func (h *TemplateHandler) Build(_ context.Context, req *domain.BuildRequest) (domain.Artifact, error) {
	name := TemplateName(req.Node.ID)
	bundle := map[string]string{name: string(req.Source)}
	for dep, a := range req.Deps {
		included, err := DecodeBundle(a)
		if err != nil {
			return domain.Artifact{}, zerr.With(err, "include", dep.String())
		}
		maps.Copy(bundle, included)
	}

	if err := h.engine.Check(bundle); err != nil {
		return domain.Artifact{}, zerr.With(err, "node", req.Node.ID.String())
	}

	content, err := codec.Marshal(bundle)
	if err != nil {
		return domain.Artifact{}, zerr.Wrap(err, "failed to encode template bundle")
	}
	return domain.Artifact{
		MediaType: BundleMediaType,
		Content:   content,
		Meta:      map[string]string{MetaTemplate: name},
	}, nil
}

// DecodeBundle reads the bundle of a template artifact.
func DecodeBundle(a domain.Artifact) (map[string]string, error) {
	if a.MediaType != BundleMediaType {
		return nil, zerr.With(zerr.Wrap(domain.ErrTemplate, "not a template bundle"), "media_type", a.MediaType)
	}
	var bundle map[string]string
	if err := codec.Unmarshal(a.Content, &bundle); err != nil {
		return nil, zerr.Wrap(domain.ErrTemplate, "corrupt template bundle: "+err.Error())
	}
	return bundle, nil
}
