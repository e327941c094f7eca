// Package tracing is a thin layer over the global OpenTelemetry tracer provider.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans under one instrumentation name.
type Tracer struct {
	tracer trace.Tracer
}

type Option func(*Tracer)

// WithTracer injects a specific tracer instead of the global provider's.
func WithTracer(t trace.Tracer) Option {
	return func(o *Tracer) {
		o.tracer = t
	}
}

// New returns a Tracer named "proofwall/<component>".
func New(component string, opts ...Option) *Tracer {
	t := &Tracer{}
	for _, opt := range opts {
		opt(t)
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer("proofwall/" + component)
	}
	return t
}

// Start opens a span. A nil Tracer falls back to the global provider.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tr := otel.Tracer("proofwall")
	if t != nil && t.tracer != nil {
		tr = t.tracer
	}
	return tr.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on the span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
