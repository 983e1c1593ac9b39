package mq

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

func traceIDFrom(ctx context.Context) trace.TraceID {
	return trace.SpanContextFromContext(ctx).TraceID()
}
