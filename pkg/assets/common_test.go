package assets

import (
	"log/slog"
	"strings"
)

type logEntry struct {
	level slog.Level
	msg   string
}

// fakeBackbone is an in-memory Backbone.
type fakeBackbone struct {
	minify    bool
	basePath  string
	baseURL   string
	options   map[string]string
	files     map[string]bool
	logs      []logEntry
	checked   []string
	fallbacks []string
}

func newFakeBackbone() *fakeBackbone {
	return &fakeBackbone{
		basePath: "/srv/plugin",
		baseURL:  "https://example.com/plugin/",
		options:  map[string]string{"version": "1.4.2"},
		files:    make(map[string]bool),
	}
}

func (b *fakeBackbone) MinifyEnabled() bool       { return b.minify }
func (b *fakeBackbone) BasePath() string          { return b.basePath }
func (b *fakeBackbone) BaseURL() string           { return b.baseURL }
func (b *fakeBackbone) Option(name string) string { return b.options[name] }

func (b *fakeBackbone) Log(level slog.Level, msg string) {
	b.logs = append(b.logs, logEntry{level: level, msg: msg})
}

func (b *fakeBackbone) Exists(path string) bool {
	b.checked = append(b.checked, path)
	return b.files[path]
}

func (b *fakeBackbone) logsAt(level slog.Level) []string {
	var out []string
	for _, e := range b.logs {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}

// notifyingBackbone also implements FallbackNotifier.
type notifyingBackbone struct {
	*fakeBackbone
}

func (b notifyingBackbone) MinifyFallback(filename, minified string) {
	b.fallbacks = append(b.fallbacks, filename+"->"+minified)
}

// call is one recorded pipeline call.
type call struct {
	method  string
	id      string
	url     string
	deps    []string
	version string
	key     string
	data    map[string]string
}

// recordingPipeline records every call made to it.
type recordingPipeline struct {
	admin bool
	calls []call
}

func (p *recordingPipeline) RegisterScript(id, url string, deps []string, version string) {
	p.calls = append(p.calls, call{method: "RegisterScript", id: id, url: url, deps: deps, version: version})
}

func (p *recordingPipeline) RegisterStyle(id, url string, deps []string, version string) {
	p.calls = append(p.calls, call{method: "RegisterStyle", id: id, url: url, deps: deps, version: version})
}

func (p *recordingPipeline) EnqueueScript(id string) {
	p.calls = append(p.calls, call{method: "EnqueueScript", id: id})
}

func (p *recordingPipeline) EnqueueStyle(id string) {
	p.calls = append(p.calls, call{method: "EnqueueStyle", id: id})
}

func (p *recordingPipeline) LocalizeScript(id, key string, data map[string]string) {
	p.calls = append(p.calls, call{method: "LocalizeScript", id: id, key: key, data: data})
}

func (p *recordingPipeline) IsAdmin() bool { return p.admin }

func (p *recordingPipeline) methods() string {
	names := make([]string, len(p.calls))
	for i, c := range p.calls {
		names[i] = c.method
	}
	return strings.Join(names, ",")
}
