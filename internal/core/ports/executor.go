// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/press/internal/core/domain"
)

// Handler builds one node kind.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Handler interface {
	// Build produces the artifact of the requested node. It must not retain
	// the request after returning.
	Build(ctx context.Context, req *domain.BuildRequest) (domain.Artifact, error)
}

// Sandbox runs untrusted plugin code under a capability set and resource budget.
type Sandbox interface {
	// Invoke runs one plugin call. Failures are returned as *domain.SandboxError.
	Invoke(ctx context.Context, plugin domain.PluginDescriptor, in domain.InputView) (domain.PluginOutput, error)
}
