package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Phase is a traced, timed bootstrap step.
type Phase struct {
	name  string
	span  trace.Span
	start time.Time
}

// StartPhase opens a span named name and starts the clock.
func StartPhase(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Phase) {
	attrs = append(attrs, attribute.String(AttrPhase, name))
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &Phase{name: name, span: span, start: time.Now()}
}

// Name returns the phase name.
func (p *Phase) Name() string { return p.name }

// End closes the span, marking it failed when err is non-nil, and returns
// how long the phase took.
func (p *Phase) End(err error) time.Duration {
	elapsed := time.Since(p.start)
	if err != nil {
		p.span.RecordError(err)
		p.span.SetStatus(codes.Error, err.Error())
	}
	p.span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))
	p.span.End()
	return elapsed
}
