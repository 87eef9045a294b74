package assets

// Style is a stylesheet resource.
type Style struct {
	base
}

// NewStyle constructs a style resource and resolves its URL against the
// ".css" extension.
func NewStyle(b Backbone, id, filename string, opts ...Option) *Style {
	return &Style{base: newBase(b, id, filename, extStyle, buildOptions(opts))}
}

// Kind returns KindStyle.
func (s *Style) Kind() Kind { return KindStyle }

// Register declares the stylesheet with the pipeline. Admin-only styles
// are skipped outside the admin area.
func (s *Style) Register(p Pipeline) {
	if s.skip(p) {
		return
	}
	p.RegisterStyle(s.id, s.url, s.deps, s.version())
}

// Enqueue marks the stylesheet for output on the current page.
func (s *Style) Enqueue(p Pipeline) {
	p.EnqueueStyle(s.id)
}
