package toolbox

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/toolbox/pkg/assets"
	"github.com/vango-dev/toolbox/pkg/middleware"
)

// CacheControl selects the Cache-Control strategy for asset files.
type CacheControl int

const (
	// CacheControlNone sets no-cache headers. Used in dev mode.
	CacheControlNone CacheControl = iota

	// CacheControlProduction caches minified and fingerprinted files for a
	// year and everything else for an hour.
	CacheControlProduction
)

// PageHandler handles a page request. page is never nil.
type PageHandler func(w http.ResponseWriter, r *http.Request, page *middleware.Page)

// AppOption configures an App.
type AppOption func(*App)

// WithLogger sets the logger. If unset, slog.Default() is used.
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithChecker overrides the FileChecker the Site uses, for assets kept in
// an object store.
func WithChecker(files assets.FileChecker) AppOption {
	return func(a *App) {
		a.files = files
	}
}

// WithBasePath sets the base path handed to the FileChecker, which may be
// empty. Use it with WithChecker when the checker is not rooted at the
// asset directory.
func WithBasePath(path string) AppOption {
	return func(a *App) {
		a.basePath = &path
	}
}

// WithDevMode disables caching, watches the asset directory and injects the
// live reload script into every page.
func WithDevMode(dev bool) AppOption {
	return func(a *App) {
		a.devMode = dev
	}
}

// WithCacheControl overrides the cache strategy. The default is
// CacheControlProduction, or CacheControlNone in dev mode.
func WithCacheControl(cc CacheControl) AppOption {
	return func(a *App) {
		a.cacheControl = &cc
	}
}

// WithStaticHeaders adds headers to every asset response.
func WithStaticHeaders(headers map[string]string) AppOption {
	return func(a *App) {
		a.staticHeaders = headers
	}
}

// WithRegistry registers metrics with reg and serves them from it on
// /metrics instead of the default registry.
func WithRegistry(reg *prometheus.Registry) AppOption {
	return func(a *App) {
		a.registry = reg
	}
}

// WithTracerProvider sets the provider for page spans. If unset, the
// global provider is used.
func WithTracerProvider(tp trace.TracerProvider) AppOption {
	return func(a *App) {
		a.tracerProvider = tp
	}
}
