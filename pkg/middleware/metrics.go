package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/toolbox/pkg/assets"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toolbox").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for page duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "toolbox",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the page metrics registered with one registry.
type Collector struct {
	PagesTotal      *prometheus.CounterVec
	PageDuration    prometheus.Histogram
	Registered      *prometheus.CounterVec
	Enqueued        *prometheus.CounterVec
	RenderErrors    prometheus.Counter
	MinifyFallbacks *prometheus.CounterVec
}

// collectors holds one Collector per registry. globalMetrics is the one most
// recently requested, used by the package-level helpers.
var (
	collectors      = make(map[prometheus.Registerer]*Collector)
	globalMetrics   *Collector
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *Collector {
	factory := promauto.With(config.Registry)

	return &Collector{
		PagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pages_total",
			Help:        "Total number of pages served with an asset queue",
			ConstLabels: config.ConstLabels,
		}, []string{"admin"}),

		PageDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "page_duration_seconds",
			Help:        "Page handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		Registered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resources_registered_total",
			Help:        "Total number of resources registered with a page queue",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		Enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resources_enqueued_total",
			Help:        "Total number of resources enqueued for output",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		RenderErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of failed page renders",
			ConstLabels: config.ConstLabels,
		}),

		MinifyFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "minify_fallbacks_total",
			Help:        "Total number of missing minified files replaced by the original",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

// NewCollector returns the metrics of the configured registry, creating and
// registering them on first use. Later calls for the same registry return
// the same Collector and ignore the remaining options.
func NewCollector(opts ...MetricsOption) *Collector {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()

	c, ok := collectors[config.Registry]
	if !ok {
		c = initMetrics(config)
		collectors[config.Registry] = c
	}
	globalMetrics = c
	return c
}

// Prometheus creates middleware that records asset metrics for every page.
// Requests without a Page in their context are passed through unrecorded.
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	return NewCollector(opts...).Middleware()
}

// Middleware records the metrics of every page passing through it.
func (c *Collector) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := PageFrom(r.Context())
			if page == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			next.ServeHTTP(w, r)
			c.PageDuration.Observe(time.Since(start).Seconds())

			c.PagesTotal.WithLabelValues(strconv.FormatBool(page.IsAdmin())).Inc()
			stats := page.Queue().Stats()
			script, style := assets.KindScript.String(), assets.KindStyle.String()
			c.Registered.WithLabelValues(script).Add(float64(stats.RegisteredScripts))
			c.Registered.WithLabelValues(style).Add(float64(stats.RegisteredStyles))
			c.Enqueued.WithLabelValues(script).Add(float64(stats.EnqueuedScripts))
			c.Enqueued.WithLabelValues(style).Add(float64(stats.EnqueuedStyles))
			if page.Err() != nil {
				c.RenderErrors.Inc()
			}
		})
	}
}

// RecordMinifyFallback counts a missing minified file under the kind of
// filename.
func (c *Collector) RecordMinifyFallback(filename string) {
	c.MinifyFallbacks.WithLabelValues(assets.KindOf(filename).String()).Inc()
}

// RecordMinifyFallback counts a missing minified file on the most recently
// created Collector. It does nothing before the first one exists.
func RecordMinifyFallback(filename string) {
	if c := GetMetrics(); c != nil {
		c.RecordMinifyFallback(filename)
	}
}

// GetMetrics returns the most recently created Collector, or nil before
// Prometheus() or NewCollector() is called.
func GetMetrics() *Collector {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()

	return globalMetrics
}
