package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vango-dev/toolbox/pkg/assets"
	"github.com/vango-dev/toolbox/pkg/pipeline"
)

// AssetsConfig configures the Assets middleware.
type AssetsConfig struct {
	// Backbone supplies paths, URLs and options to the resources.
	Backbone assets.Backbone

	// Resources are declared and registered on every request.
	Resources []assets.Declaration

	// IsAdmin decides whether a request is administrative.
	// Default: PrefixAdmin("/admin").
	IsAdmin func(r *http.Request) bool

	// Prepare runs after the resources are registered and before the
	// handler, for per-request registrations.
	Prepare func(r *http.Request, p *Page)

	// Logger is passed to the queue. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// PrefixAdmin treats requests whose path starts with prefix as
// administrative.
func PrefixAdmin(prefix string) func(r *http.Request) bool {
	prefix = strings.TrimRight(prefix, "/")
	return func(r *http.Request) bool {
		p := r.URL.Path
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
}

// Page is the asset state of one request.
type Page struct {
	registry *assets.Registry
	queue    *pipeline.Queue
	err      error
}

// NewPage builds a page with every declaration registered on queue.
func NewPage(b assets.Backbone, decls []assets.Declaration, queue *pipeline.Queue) *Page {
	reg := assets.NewRegistry(b)
	reg.DeclareAll(decls)
	reg.RegisterAll(queue)
	return &Page{registry: reg, queue: queue}
}

func (p *Page) Registry() *assets.Registry { return p.registry }
func (p *Page) Queue() *pipeline.Queue     { return p.queue }
func (p *Page) IsAdmin() bool              { return p.queue.IsAdmin() }

// Enqueue enqueues declared resources by id.
func (p *Page) Enqueue(ids ...string) error {
	return p.registry.Enqueue(p.queue, ids...)
}

// EnqueueAll enqueues every declared resource.
func (p *Page) EnqueueAll() {
	p.registry.EnqueueAll(p.queue)
}

// Render writes the enqueued tags. The error is also kept for Err.
func (p *Page) Render(w io.Writer) error {
	p.err = p.queue.Render(w)
	return p.err
}

// Err returns the error of the last Render.
func (p *Page) Err() error { return p.err }

type pageKey struct{}

// WithPage returns a copy of ctx carrying p.
func WithPage(ctx context.Context, p *Page) context.Context {
	return context.WithValue(ctx, pageKey{}, p)
}

// PageFrom returns the page stored in ctx, or nil.
func PageFrom(ctx context.Context) *Page {
	p, _ := ctx.Value(pageKey{}).(*Page)
	return p
}

// Assets creates middleware that attaches a fresh Page to every request.
func Assets(cfg AssetsConfig) func(http.Handler) http.Handler {
	isAdmin := cfg.IsAdmin
	if isAdmin == nil {
		isAdmin = PrefixAdmin("/admin")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := pipeline.NewQueue(
				pipeline.WithAdmin(isAdmin(r)),
				pipeline.WithLogger(logger.With("path", r.URL.Path)),
			)
			page := NewPage(cfg.Backbone, cfg.Resources, q)
			if cfg.Prepare != nil {
				cfg.Prepare(r, page)
			}
			next.ServeHTTP(w, r.WithContext(WithPage(r.Context(), page)))
		})
	}
}
