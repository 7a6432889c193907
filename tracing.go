package zuora

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/sendgrid/zuora"

func newTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}

// startCallSpan starts a client span for one SOAP operation.
func startCallSpan(ctx context.Context, tracer trace.Tracer, operation, endpoint, trackID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "zuora."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "soap"),
			attribute.String("rpc.method", operation),
			attribute.String("server.address", endpoint),
			attribute.String("zuora.track_id", trackID),
		),
	)
}

// endCallSpan finishes a span, recording the fault if there was one.
func endCallSpan(span trace.Span, f *Fault) {
	if f != nil {
		span.SetAttributes(attribute.String("zuora.fault.origin", f.Origin.String()))
		if f.Code != "" {
			span.SetAttributes(attribute.String("zuora.fault.code", f.Code))
		}
		span.RecordError(f)
		span.SetStatus(codes.Error, f.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// injectTraceHeaders propagates the span context to Zuora through HTTP headers.
func injectTraceHeaders(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}
