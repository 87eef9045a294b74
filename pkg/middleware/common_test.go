package middleware

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// memBackbone is a Backbone with no minification.
type memBackbone struct{}

func (memBackbone) MinifyEnabled() bool    { return false }
func (memBackbone) BasePath() string       { return "/srv" }
func (memBackbone) BaseURL() string        { return "/assets/" }
func (memBackbone) Option(string) string   { return "1.0" }
func (memBackbone) Log(slog.Level, string) {}
func (memBackbone) Exists(string) bool     { return false }

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	collectors = make(map[prometheus.Registerer]*Collector)
	globalMetricsMu.Unlock()
}

type fakeSpan struct {
	noop.Span
	name   string
	attrs  []attribute.KeyValue
	status codes.Code
	errs   []error
	ended  bool
}

func (s *fakeSpan) IsRecording() bool { return true }
func (s *fakeSpan) End(...trace.SpanEndOption) {
	s.ended = true
}
func (s *fakeSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.attrs = append(s.attrs, kv...)
}
func (s *fakeSpan) SetStatus(code codes.Code, _ string) {
	s.status = code
}
func (s *fakeSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *fakeSpan) attr(key string) (attribute.Value, bool) {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

type fakeTracer struct {
	noop.Tracer
	spans []*fakeSpan
}

func (t *fakeTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &fakeSpan{name: name, attrs: cfg.Attributes()}
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type fakeProvider struct {
	noop.TracerProvider
	tracer *fakeTracer
}

func (p *fakeProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}
