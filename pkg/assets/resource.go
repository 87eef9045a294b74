package assets

import (
	"fmt"
	"log/slog"
)

// Kind identifies the variant of a Resource.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindScript
	KindStyle
)

const (
	extScript = ".js"
	extStyle  = ".css"
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindStyle:
		return "style"
	default:
		return "unknown"
	}
}

// KindOf picks the variant from the filename suffix.
func KindOf(filename string) Kind {
	switch {
	case hasSuffix(filename, extScript):
		return KindScript
	case hasSuffix(filename, extStyle):
		return KindStyle
	default:
		return KindUnknown
	}
}

// Resource is a script or style asset. The only implementations are *Script
// and *Style.
type Resource interface {
	ID() string
	Filename() string
	Dependencies() []string
	AdminOnly() bool

	// URL is the resolved asset URL, fixed at construction.
	URL() string
	Kind() Kind

	// Register hands the resource to the pipeline. It does nothing for an
	// admin-only resource outside an administrative request.
	Register(p Pipeline)

	// Enqueue marks the resource for output. It is not gated on AdminOnly.
	Enqueue(p Pipeline)

	sealed()
}

// Option configures optional fields of a resource.
type Option func(*options)

type options struct {
	deps         []string
	admin        bool
	localizeKey  string
	localizeData map[string]string
}

// WithDependencies sets the identifiers that must be output before the
// resource.
func WithDependencies(ids ...string) Option {
	return func(o *options) {
		o.deps = ids
	}
}

// AdminOnly restricts registration to administrative requests.
func AdminOnly() Option {
	return func(o *options) {
		o.admin = true
	}
}

// WithAdmin sets the admin-only flag explicitly.
func WithAdmin(admin bool) Option {
	return func(o *options) {
		o.admin = admin
	}
}

// WithLocalization attaches data exposed to a script under key. Styles
// ignore it. An empty key means no localization.
func WithLocalization(key string, data map[string]string) Option {
	return func(o *options) {
		o.localizeKey = key
		o.localizeData = data
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.deps != nil {
		o.deps = append([]string(nil), o.deps...)
	}
	return o
}

// base holds the fields shared by both variants.
type base struct {
	backbone Backbone
	id       string
	filename string
	deps     []string
	admin    bool
	url      string
}

func newBase(b Backbone, id, filename, ext string, o options) base {
	return base{
		backbone: b,
		id:       id,
		filename: filename,
		deps:     o.deps,
		admin:    o.admin,
		url:      resolveURL(b, filename, ext),
	}
}

func (r *base) ID() string       { return r.id }
func (r *base) Filename() string { return r.filename }
func (r *base) AdminOnly() bool  { return r.admin }
func (r *base) URL() string      { return r.url }

// Dependencies returns a copy of the dependency identifiers.
func (r *base) Dependencies() []string {
	if r.deps == nil {
		return nil
	}
	return append([]string(nil), r.deps...)
}

func (r *base) version() string {
	return r.backbone.Option(OptionVersion)
}

// skip reports whether registration must be skipped for this request.
func (r *base) skip(p Pipeline) bool {
	return r.admin && !p.IsAdmin()
}

func (*base) sealed() {}

// Generate builds a Script for ".js" files and a Style for ".css" files.
//
// Any other suffix is logged as a warning and reported with ok == false;
// Generate never fails otherwise and does not validate its inputs.
func Generate(b Backbone, id, filename string, opts ...Option) (res Resource, ok bool) {
	switch KindOf(filename) {
	case KindScript:
		return NewScript(b, id, filename, opts...), true
	case KindStyle:
		return NewStyle(b, id, filename, opts...), true
	default:
		b.Log(slog.LevelWarn, fmt.Sprintf("unable to determine resource type for %q", filename))
		return nil, false
	}
}
