package ports

import (
	"context"
	"io"
	"time"

	"go.trai.ch/press/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Span attribute keys set by the scheduler.
const (
	AttrNode    = "press.node"
	AttrKind    = "press.kind"
	AttrBuildID = "press.build_id"
	AttrState   = "press.state"
)

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals which nodes are stale and about to be built.
	EmitPlan(ctx context.Context, nodes []string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	Attributes map[string]any
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithAttribute sets an attribute when the span starts.
func WithAttribute(key string, value any) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any)
		}
		c.Attributes[key] = value
	}
}

// Metrics records build engine measurements.
type Metrics interface {
	JobFinished(kind domain.NodeKind, state domain.JobState, d time.Duration)
	CacheEvent(event string)
	SandboxOutcome(plugin, outcome string)
	BuildFinished(report *domain.BuildReport)
}

// MetricsExporter serves collected metrics until ctx is done.
type MetricsExporter interface {
	Serve(ctx context.Context, addr string) error
}

type spanKey struct{}

// ContextWithSpan returns ctx carrying span.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	return context.WithValue(ctx, spanKey{}, span)
}

// SpanFromContext returns the innermost span started through a Tracer, if any.
func SpanFromContext(ctx context.Context) (Span, bool) {
	span, ok := ctx.Value(spanKey{}).(Span)
	return span, ok
}
