// Package middleware provides net/http middleware that gives every request
// its own asset page.
//
// Assets builds a pipeline.Queue and an assets.Registry for each request,
// registers the configured resources and stores the result in the request
// context:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middleware.Assets(middleware.AssetsConfig{Backbone: site, Resources: cfg.Resources}),
//	    middleware.Prometheus(),
//	    middleware.OpenTelemetry(),
//	)
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//	    page := middleware.PageFrom(r.Context())
//	    page.Enqueue("app")
//	    page.Render(w)
//	})
//
// Prometheus and OpenTelemetry read the page from the context, so they must
// be installed after Assets.
//
// # Prometheus Metrics
//
//   - toolbox_pages_total: pages served, by admin flag
//   - toolbox_page_duration_seconds: page handling duration
//   - toolbox_resources_registered_total: resources registered, by kind
//   - toolbox_resources_enqueued_total: resources enqueued, by kind
//   - toolbox_render_errors_total: failed renders
//   - toolbox_minify_fallbacks_total: missing minified files, by kind
//
// Expose them with promhttp:
//
//	r.Handle("/metrics", promhttp.Handler())
package middleware
