// Package assets registers client-side scripts and styles with a host page
// pipeline.
//
// A resource is either a Script or a Style. The variant is picked from the
// filename suffix by Generate and never changes afterwards:
//
//	res, ok := assets.Generate(site, "app", "js/app.js",
//	    assets.WithDependencies("jquery"),
//	    assets.WithLocalization("appData", map[string]string{"ajax": "/api"}),
//	)
//	if ok {
//	    res.Register(queue)
//	    res.Enqueue(queue)
//	}
//
// When the Backbone has minification enabled, the resolved URL points at the
// ".min" variant of the file if one exists under the base path:
//
//	js/app.js   -> https://cdn.example.com/assets/js/app.min.js
//	css/ui.css  -> https://cdn.example.com/assets/css/ui.min.css
//
// The URL is computed once, when the resource is constructed.
package assets
