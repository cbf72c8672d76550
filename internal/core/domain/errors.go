package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrCycleDetected is returned when a strict edge would close a cycle in the content graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnknownNode is returned when an operation references a node that is not in the graph.
	ErrUnknownNode = zerr.New("unknown node")

	// ErrTemplate is returned when a template fails to parse or execute.
	ErrTemplate = zerr.New("template error")

	// ErrTransform is returned when an asset transformer rejects its input.
	ErrTransform = zerr.New("transform error")

	// ErrIO is returned when reading sources or writing outputs fails.
	ErrIO = zerr.New("io error")

	// ErrPluginTrap is returned when a plugin crashes, exits abnormally, or violates the protocol.
	ErrPluginTrap = zerr.New("plugin trap")

	// ErrResourceLimitExceeded is returned when a plugin exceeds its time or memory budget.
	ErrResourceLimitExceeded = zerr.New("resource limit exceeded")

	// ErrCapabilityViolation is returned when a plugin invokes a host call it was not granted.
	ErrCapabilityViolation = zerr.New("capability violation")

	// ErrCacheCorruption is returned when a cache entry does not match its key or checksum.
	ErrCacheCorruption = zerr.New("cache corruption")

	// ErrBuildCancelled is returned when a build pass is aborted through its context.
	ErrBuildCancelled = zerr.New("build cancelled")

	// ErrNoHandler is returned when no handler is registered for a node kind.
	ErrNoHandler = zerr.New("no handler for node kind")

	// ErrInvalidTransition is returned when a job is moved between states illegally.
	ErrInvalidTransition = zerr.New("invalid job state transition")

	// ErrBuildFailed is returned when a build pass finished with at least one failed node.
	ErrBuildFailed = zerr.New("build failed")

	// ErrBrokenLink is returned by site checks when a document links to a missing node.
	ErrBrokenLink = zerr.New("broken link")

	// ErrInvalidConfig is returned when press.yaml cannot be interpreted.
	ErrInvalidConfig = zerr.New("invalid configuration")
)

// CycleError describes a rejected strict edge from -> to. Path walks from the
// edge target through the existing dependencies back to itself, e.g. [A B A]
// when B -> A is added while A already depends on B.
type CycleError struct {
	Path []NodeID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = id.String()
	}
	return ErrCycleDetected.Error() + ": " + strings.Join(parts, " -> ")
}

// Unwrap makes errors.Is(err, ErrCycleDetected) hold.
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

// SandboxErrorKind classifies plugin failures.
type SandboxErrorKind int

const (
	// PluginTrap is a crash, abnormal exit, or protocol violation inside the plugin.
	PluginTrap SandboxErrorKind = iota
	// ResourceLimitExceeded is a time or memory budget overrun.
	ResourceLimitExceeded
	// CapabilityViolation is a host call outside the granted capability set.
	CapabilityViolation
)

// String returns the taxonomy name of the kind.
func (k SandboxErrorKind) String() string {
	switch k {
	case ResourceLimitExceeded:
		return "ResourceLimitExceeded"
	case CapabilityViolation:
		return "CapabilityViolation"
	default:
		return "PluginTrap"
	}
}

func (k SandboxErrorKind) sentinel() error {
	switch k {
	case ResourceLimitExceeded:
		return ErrResourceLimitExceeded
	case CapabilityViolation:
		return ErrCapabilityViolation
	default:
		return ErrPluginTrap
	}
}

// SandboxError is the result of a failed plugin invocation.
type SandboxError struct {
	Kind   SandboxErrorKind
	Plugin string
	Detail string
}

func (e *SandboxError) Error() string {
	msg := e.Kind.sentinel().Error() + ": plugin " + e.Plugin
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes the taxonomy sentinel for errors.Is.
func (e *SandboxError) Unwrap() error {
	return e.Kind.sentinel()
}
