package main

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/vango-dev/toolbox"
	"github.com/vango-dev/toolbox/pkg/middleware"
)

var previewTemplate = template.Must(template.New("preview").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{.Head}}</head>
<body>
<h1>{{.Title}}</h1>
<p>{{if .Admin}}Administrative page{{else}}Public page{{end}}: {{.Path}}</p>
</body>
</html>
`))

// previewPage enqueues every declared resource.
func previewPage(name string) toolbox.PageHandler {
	if name == "" {
		name = "toolbox"
	}
	return func(w http.ResponseWriter, r *http.Request, page *middleware.Page) {
		page.EnqueueAll()

		var head strings.Builder
		if err := page.Render(&head); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		previewTemplate.Execute(w, map[string]any{
			"Title": name,
			"Head":  template.HTML(head.String()),
			"Admin": page.IsAdmin(),
			"Path":  r.URL.Path,
		})
	}
}
