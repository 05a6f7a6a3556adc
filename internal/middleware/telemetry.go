package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"quantdesk/internal/infrastructure"
)

// Telemetry instruments HTTP requests with OpenTelemetry traces and the
// service's request metrics.
type Telemetry struct {
	tracer  trace.Tracer
	metrics *infrastructure.Metrics
}

// NewTelemetry builds the instrumentation middleware. A nil tracer is
// replaced by a no-op tracer and a nil metrics set disables recording, so
// the middleware is safe to install when telemetry is turned off.
func NewTelemetry(tracer trace.Tracer, metrics *infrastructure.Metrics) *Telemetry {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}
	return &Telemetry{tracer: tracer, metrics: metrics}
}

// Handler traces the request, records request metrics, and promotes the
// span's trace ID to the logging trace_id.
func (t *Telemetry) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		spanName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		ctx, span := t.tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(r.URL.Path),
				semconv.ServerAddressKey.String(r.Host),
				semconv.UserAgentOriginalKey.String(r.UserAgent()),
				semconv.ClientAddressKey.String(GetRealIP(r)),
			),
		)
		defer span.End()

		if span.SpanContext().IsValid() {
			ctx = infrastructure.WithTraceID(ctx, span.SpanContext().TraceID().String())
		}
		r = r.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		t.metrics.AddActiveRequests(ctx, 1)
		defer t.metrics.AddActiveRequests(ctx, -1)

		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		t.metrics.RecordHTTPRequest(ctx, r.Method, RoutePattern(r), ww.Status(), duration)

		span.SetAttributes(
			semconv.HTTPResponseStatusCodeKey.Int(ww.Status()),
			attribute.Int("http.response.body.size", ww.BytesWritten()),
		)
		if ww.Status() >= 400 {
			span.SetStatus(codes.Error, http.StatusText(ww.Status()))
		}
	})
}

// RoutePattern returns the chi route pattern for the request, or the raw
// path when the request was not routed by chi.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// GetRealIP extracts the client IP address, honouring proxy headers.
func GetRealIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
