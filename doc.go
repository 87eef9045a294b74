// Package toolbox serves pages whose script and style tags are managed by
// an asset pipeline.
//
// An App reads toolbox.json, declares the configured resources on every
// page request and hands the handler a middleware.Page to enqueue them:
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    return err
//	}
//	app, err := toolbox.NewApp(cfg, toolbox.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	app.Page("/", func(w http.ResponseWriter, r *http.Request, page *middleware.Page) {
//	    page.Enqueue("app")
//	    io.WriteString(w, "<!doctype html><head>")
//	    page.Render(w)
//	    io.WriteString(w, "</head>")
//	})
//	return app.Run(ctx, cfg.ServerAddress())
//
// Asset files are served from the configured directory under the asset URL,
// unless the URL points at another origin. Prometheus metrics are exposed on
// /metrics.
package toolbox
