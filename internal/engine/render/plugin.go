package render

import (
	"context"
	"maps"
	"path"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

// Artifact metadata keys of plugin derivatives.
const (
	MetaPlugin = "plugin"
	MetaInput  = "input"
)

var _ ports.Handler = (*PluginHandler)(nil)

// PluginHandler produces plugin derivatives inside the sandbox. Only copies of
// node data cross the boundary.
type PluginHandler struct {
	sandbox ports.Sandbox
	plugins map[string]domain.PluginDescriptor
	logger  ports.Logger
}

// NewPluginHandler creates a PluginHandler for the configured plugins.
func NewPluginHandler(sandbox ports.Sandbox, plugins []domain.PluginDescriptor, logger ports.Logger) *PluginHandler {
	byName := make(map[string]domain.PluginDescriptor, len(plugins))
	for _, p := range plugins {
		byName[p.Name] = p
	}
	return &PluginHandler{sandbox: sandbox, plugins: byName, logger: logger}
}

// Build invokes the plugin on the artifact of its input. Extra outputs are
// published under a directory named after the plugin.
func (h *PluginHandler) Build(ctx context.Context, req *domain.BuildRequest) (domain.Artifact, error) {
	name, input, ok := domain.ParsePluginNodeID(req.Node.ID)
	if !ok {
		return domain.Artifact{}, zerr.With(zerr.Wrap(domain.ErrNoHandler, "not a plugin derivative"), "node", req.Node.ID.String())
	}
	plugin, ok := h.plugins[name]
	if !ok {
		return domain.Artifact{}, zerr.With(zerr.Wrap(domain.ErrNoHandler, "plugin not configured"), "plugin", name)
	}
	if h.sandbox == nil {
		return domain.Artifact{}, &domain.SandboxError{Kind: domain.PluginTrap, Plugin: name, Detail: "no sandbox available"}
	}

	in, ok := req.Deps[input]
	if !ok {
		return domain.Artifact{}, zerr.With(zerr.Wrap(domain.ErrUnknownNode, "plugin input was not built"), "node", input.String())
	}

	view := domain.InputView{
		Node:    input,
		Content: in.Content,
		Params:  maps.Clone(plugin.Params),
		Inputs:  make(map[string][]byte, len(req.Deps)),
	}
	for dep, a := range req.Deps {
		view.Inputs[dep.String()] = a.Content
	}

	out, err := h.sandbox.Invoke(ctx, plugin, view)
	if err != nil {
		return domain.Artifact{}, err
	}

	a := domain.Artifact{
		MediaType: out.MediaType,
		Content:   out.Content,
		Meta: map[string]string{
			MetaPlugin: name,
			MetaInput:  input.String(),
		},
	}
	if a.MediaType == "" {
		a.MediaType = "application/octet-stream"
	}
	if len(out.Outputs) > 0 {
		a.Outputs = make(map[string][]byte, len(out.Outputs))
		for rel, data := range out.Outputs {
			a.Outputs[path.Join(name, rel)] = data
		}
	}
	if h.logger != nil {
		h.logger.Debug("plugin derivative built", "plugin", name, "input", input.String(), "outputs", len(a.Outputs))
	}
	return a, nil
}
