// Package pipeline is an in-process host pipeline for the assets package.
//
// A Queue collects the scripts and styles registered and enqueued while a
// page is built and renders them as HTML tags, dependencies first:
//
//	q := pipeline.NewQueue(pipeline.WithAdmin(isAdmin))
//	registry.RegisterAll(q)
//	registry.Enqueue(q, "app")
//	q.Render(w)
package pipeline

import (
	"log/slog"
	"regexp"

	"github.com/vango-dev/toolbox/pkg/assets"
)

// localization is one LocalizeScript call.
type localization struct {
	key  string
	data map[string]string
}

// entry is a registered script or style.
type entry struct {
	id            string
	url           string
	version       string
	deps          []string
	localizations []localization
}

// list holds the registered and enqueued handles of one kind.
type list struct {
	registered map[string]*entry
	queue      []string
	enqueued   map[string]bool
}

func newList() *list {
	return &list{
		registered: make(map[string]*entry),
		enqueued:   make(map[string]bool),
	}
}

// Queue is a request-scoped assets.Pipeline. It is not safe for concurrent
// use.
type Queue struct {
	admin   bool
	logger  *slog.Logger
	scripts *list
	styles  *list
}

var _ assets.Pipeline = (*Queue)(nil)

// Option configures a Queue.
type Option func(*Queue)

// WithAdmin marks the queue as serving an administrative request.
func WithAdmin(admin bool) Option {
	return func(q *Queue) {
		q.admin = admin
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		logger:  slog.Default(),
		scripts: newList(),
		styles:  newList(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) IsAdmin() bool { return q.admin }

func (q *Queue) RegisterScript(id, url string, deps []string, version string) {
	q.register(q.scripts, assets.KindScript, id, url, deps, version)
}

func (q *Queue) RegisterStyle(id, url string, deps []string, version string) {
	q.register(q.styles, assets.KindStyle, id, url, deps, version)
}

// register keeps the first registration of an id.
func (q *Queue) register(l *list, kind assets.Kind, id, url string, deps []string, version string) {
	if _, exists := l.registered[id]; exists {
		q.logger.Debug("already registered", "kind", kind.String(), "id", id)
		return
	}
	l.registered[id] = &entry{
		id:      id,
		url:     url,
		version: version,
		deps:    append([]string(nil), deps...),
	}
}

func (q *Queue) EnqueueScript(id string) { q.enqueue(q.scripts, id) }
func (q *Queue) EnqueueStyle(id string)  { q.enqueue(q.styles, id) }

func (q *Queue) enqueue(l *list, id string) {
	if l.enqueued[id] {
		return
	}
	l.enqueued[id] = true
	l.queue = append(l.queue, id)
}

// localizeKey matches the JavaScript identifiers accepted as variable names.
var localizeKey = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// LocalizeScript attaches data to a registered script. Calls for scripts
// that are not registered, or whose key is not a JavaScript identifier, are
// dropped.
func (q *Queue) LocalizeScript(id, key string, data map[string]string) {
	if !localizeKey.MatchString(key) {
		q.logger.Warn("invalid localization key", "id", id, "key", key)
		return
	}
	e, ok := q.scripts.registered[id]
	if !ok {
		q.logger.Warn("localize for unregistered script", "id", id, "key", key)
		return
	}
	e.localizations = append(e.localizations, localization{key: key, data: data})
}

// Registered reports whether id is registered as the given kind.
func (q *Queue) Registered(kind assets.Kind, id string) bool {
	switch kind {
	case assets.KindScript:
		_, ok := q.scripts.registered[id]
		return ok
	case assets.KindStyle:
		_, ok := q.styles.registered[id]
		return ok
	}
	return false
}

// Enqueued returns the enqueued handles of kind, in enqueue order.
func (q *Queue) Enqueued(kind assets.Kind) []string {
	var l *list
	switch kind {
	case assets.KindScript:
		l = q.scripts
	case assets.KindStyle:
		l = q.styles
	default:
		return nil
	}
	return append([]string(nil), l.queue...)
}

// Stats counts registered and enqueued handles.
type Stats struct {
	RegisteredScripts int
	RegisteredStyles  int
	EnqueuedScripts   int
	EnqueuedStyles    int
}

func (q *Queue) Stats() Stats {
	return Stats{
		RegisteredScripts: len(q.scripts.registered),
		RegisteredStyles:  len(q.styles.registered),
		EnqueuedScripts:   len(q.scripts.queue),
		EnqueuedStyles:    len(q.styles.queue),
	}
}
