package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "toolbox"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "toolbox").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// Filter decides which requests are traced. If nil, all pages are.
	Filter func(r *http.Request) bool
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithRequestFilter sets a filter for traced requests.
func WithRequestFilter(filter func(r *http.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// OpenTelemetry creates middleware that wraps every page in a
// "toolbox.page" span. The span records the admin flag up front and the
// registered and enqueued counts once the handler returns. A failed Render
// marks the span as errored.
//
// The tracer comes from the global provider unless WithTracerProvider is
// given:
//
//	otel.SetTracerProvider(tp)
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("shop")))
func OpenTelemetry(opts ...OTelOption) func(http.Handler) http.Handler {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := PageFrom(r.Context())
			if page == nil || (config.Filter != nil && !config.Filter(r)) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracer.Start(r.Context(), "toolbox.page",
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.route", r.URL.Path),
					attribute.Bool("toolbox.admin", page.IsAdmin()),
				),
			)
			defer span.End()

			next.ServeHTTP(w, r.WithContext(ctx))

			stats := page.Queue().Stats()
			span.SetAttributes(
				attribute.Int("toolbox.scripts.registered", stats.RegisteredScripts),
				attribute.Int("toolbox.styles.registered", stats.RegisteredStyles),
				attribute.Int("toolbox.scripts.enqueued", stats.EnqueuedScripts),
				attribute.Int("toolbox.styles.enqueued", stats.EnqueuedStyles),
			)
			if err := page.Err(); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// SpanFromRequest returns the page span of r, or nil when r is not traced.
func SpanFromRequest(r *http.Request) trace.Span {
	span := trace.SpanFromContext(r.Context())
	if !span.SpanContext().IsValid() && !span.IsRecording() {
		return nil
	}
	return span
}
