// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for vidfetch spans.
const (
	SessionIDKey = "vidfetch.session_id"
	SubflowKey   = "vidfetch.subflow"
	FormatKey    = "vidfetch.format"
	QualityKey   = "vidfetch.quality"
	ErrorTypeKey = "error.type"
)

// StartSubflow opens a span for one request/response cycle of a session.
func StartSubflow(ctx context.Context, sessionID, subflow string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	kv := append([]attribute.KeyValue{
		attribute.String(SessionIDKey, sessionID),
		attribute.String(SubflowKey, subflow),
	}, attrs...)
	return Tracer().Start(ctx, "session."+subflow,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(kv...),
	)
}

// ArtifactAttributes describes an artifact request.
func ArtifactAttributes(format, quality string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(FormatKey, format),
		attribute.String(QualityKey, quality),
	}
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(ErrorTypeKey, fmt.Sprintf("%T", err)))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
