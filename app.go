package toolbox

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/toolbox/internal/config"
	"github.com/vango-dev/toolbox/internal/dev"
	"github.com/vango-dev/toolbox/internal/errors"
	"github.com/vango-dev/toolbox/pkg/assets"
	"github.com/vango-dev/toolbox/pkg/middleware"
)

// App serves pages and the asset files they reference.
//
// Every request handled through Page gets a fresh asset queue with the
// configured resources registered. Requests under the admin prefix see
// admin-only resources too.
type App struct {
	cfg    *config.Config
	site   *config.Site
	router chi.Router
	pages  chi.Router
	logger *slog.Logger

	files    assets.FileChecker
	basePath *string
	manifest *assets.Manifest

	devMode bool
	reload  *dev.ReloadServer

	staticDir     string
	staticPrefix  string
	staticFS      http.FileSystem
	staticHeaders map[string]string
	cacheControl  *CacheControl

	registry       *prometheus.Registry
	metrics        *middleware.Collector
	tracerProvider trace.TracerProvider
}

// NewApp validates cfg and builds the router. A nil cfg uses config.New().
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.cacheControl == nil {
		cc := CacheControlProduction
		if a.devMode {
			cc = CacheControlNone
		}
		a.cacheControl = &cc
	}

	if a.files == nil {
		files, err := a.defaultChecker()
		if err != nil {
			return nil, err
		}
		a.files = files
	}

	var metricsOpts []middleware.MetricsOption
	if a.registry != nil {
		metricsOpts = append(metricsOpts, middleware.WithRegistry(a.registry))
	}
	a.metrics = middleware.NewCollector(metricsOpts...)

	siteOpts := []config.SiteOption{config.WithFallbackHook(a.minifyFallback)}
	if a.basePath != nil {
		siteOpts = append(siteOpts, config.WithBasePath(*a.basePath))
	}
	a.site = config.NewSite(cfg, a.files, a.logger, siteOpts...)

	if !cfg.IsRemoteURL() {
		a.staticDir = cfg.AssetsPath()
		a.staticPrefix = cfg.Assets.URL
		a.staticFS = http.Dir(a.staticDir)
	}
	if a.devMode {
		a.reload = dev.NewReloadServer(a.logger)
	}

	a.routes()
	return a, nil
}

// defaultChecker uses the build manifest when one is configured and the
// asset directory otherwise.
func (a *App) defaultChecker() (assets.FileChecker, error) {
	path := a.cfg.ManifestPath()
	if path == "" {
		return assets.DirChecker{}, nil
	}
	m, err := assets.LoadManifest(path)
	if err != nil {
		return nil, errors.New("T103").WithLocation(path, 0, 0).Wrap(err)
	}
	a.manifest = m.WithRoot(a.cfg.AssetsPath())
	return a.manifest, nil
}

func (a *App) routes() {
	r := chi.NewRouter()

	gatherer := prometheus.DefaultGatherer
	if a.registry != nil {
		gatherer = a.registry
	}
	otelOpts := []middleware.OTelOption{}
	if a.tracerProvider != nil {
		otelOpts = append(otelOpts, middleware.WithTracerProvider(a.tracerProvider))
	}

	assetsCfg := middleware.AssetsConfig{
		Backbone:  a.site,
		Resources: a.cfg.Resources,
		IsAdmin:   middleware.PrefixAdmin(a.cfg.Admin.Prefix),
		Logger:    a.logger,
	}
	if a.devMode {
		assetsCfg.Prepare = injectReload
	}

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if a.reload != nil {
		r.Get(dev.ScriptPath, dev.ServeClientScript)
		r.Get(dev.SocketPath, a.reload.HandleWebSocket)
	}
	if a.staticFS != nil {
		prefix := strings.TrimRight(a.staticPrefix, "/")
		r.Handle(prefix+"/*", http.HandlerFunc(a.serveStatic))
	}

	r.Group(func(pages chi.Router) {
		pages.Use(
			middleware.Assets(assetsCfg),
			a.metrics.Middleware(),
			middleware.OpenTelemetry(otelOpts...),
		)
		a.pages = pages
	})

	a.router = r
}

// injectReload adds the live reload client to a page.
func injectReload(_ *http.Request, p *middleware.Page) {
	q := p.Queue()
	q.RegisterScript(dev.ScriptHandle, dev.ScriptPath, nil, "")
	q.EnqueueScript(dev.ScriptHandle)
}

func (a *App) minifyFallback(filename, minified string) {
	a.metrics.RecordMinifyFallback(filename)
}

// Page registers handler for GET requests to pattern.
func (a *App) Page(pattern string, handler PageHandler) {
	a.pages.Get(pattern, func(w http.ResponseWriter, r *http.Request) {
		handler(w, r, middleware.PageFrom(r.Context()))
	})
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi router for additional routes.
func (a *App) Router() chi.Router {
	return a.router
}

// Site returns the asset backbone.
func (a *App) Site() *config.Site {
	return a.site
}

// Metrics returns the page metrics the App records.
func (a *App) Metrics() *middleware.Collector {
	return a.metrics
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Run serves on addr until ctx is done, then shuts down gracefully. In dev
// mode it also watches the asset directory.
func (a *App) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New("T140").WithDetail("cannot listen on " + addr).Wrap(err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.reload != nil {
		go a.watch(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", "addr", ln.Addr().String(), "dev", a.devMode)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return errors.New("T140").Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if a.reload != nil {
		a.reload.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("T140").Wrap(err)
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.New("T140").Wrap(err)
	}
	a.logger.Info("server stopped")
	return nil
}

func (a *App) watch(ctx context.Context) {
	w := dev.NewWatcher(dev.WatcherConfig{
		Paths:    []string{a.cfg.AssetsPath()},
		Manifest: a.cfg.ManifestPath(),
		Logger:   a.logger,
	})
	hub := dev.NewHub(w, a.reload, a.logger)
	if a.manifest != nil {
		path := a.cfg.ManifestPath()
		hub.OnManifest = func() error { return a.manifest.Reload(path) }
	}
	if err := hub.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		a.logger.Warn("asset watcher stopped", "error", err)
	}
}
