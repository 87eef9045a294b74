package assets

// Script is a JavaScript resource.
type Script struct {
	base
	localizeKey  string
	localizeData map[string]string
}

// NewScript constructs a script resource and resolves its URL.
func NewScript(b Backbone, id, filename string, opts ...Option) *Script {
	o := buildOptions(opts)
	return &Script{
		base:         newBase(b, id, filename, extScript, o),
		localizeKey:  o.localizeKey,
		localizeData: o.localizeData,
	}
}

// Kind returns KindScript.
func (s *Script) Kind() Kind { return KindScript }

// LocalizeKey returns the name the localization data is exposed under, or ""
// when the script has none.
func (s *Script) LocalizeKey() string { return s.localizeKey }

// LocalizeData returns the localization data.
func (s *Script) LocalizeData() map[string]string { return s.localizeData }

// Register declares the script with the pipeline, then attaches its
// localization data. Admin-only scripts are skipped outside the admin area.
func (s *Script) Register(p Pipeline) {
	if s.skip(p) {
		return
	}
	p.RegisterScript(s.id, s.url, s.deps, s.version())
	s.SetLocalizeData(p, s.localizeKey, s.localizeData)
}

// SetLocalizeData stores key and data and passes them to the pipeline.
// An empty key is a no-op.
func (s *Script) SetLocalizeData(p Pipeline, key string, data map[string]string) {
	if key == "" {
		return
	}
	s.localizeKey = key
	s.localizeData = data
	p.LocalizeScript(s.id, key, data)
}

// Enqueue marks the script for output on the current page.
func (s *Script) Enqueue(p Pipeline) {
	p.EnqueueScript(s.id)
}
