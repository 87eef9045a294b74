package assets

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
)

// Manifest is a build manifest mapping source asset names to the files the
// build produced for them:
//
//	{
//	  "js/app.js": "js/app.min.js",
//	  "css/ui.css": "css/ui.min.css"
//	}
//
// It serves as a FileChecker when the asset files are not reachable from
// the process, for example when they are uploaded to a CDN at build time.
// It is safe for concurrent use.
type Manifest struct {
	entries map[string]string
	built   map[string]struct{}
	root    string
	mu      sync.RWMutex
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
		built:   make(map[string]struct{}),
	}
}

// LoadManifest reads a manifest.json file.
func LoadManifest(path string) (*Manifest, error) {
	m := NewManifest()
	if err := m.Reload(path); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload replaces every entry with the contents of path. On error the
// manifest is left unchanged.
func (m *Manifest) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	if entries == nil {
		entries = make(map[string]string)
	}
	built := make(map[string]struct{}, len(entries))
	for _, out := range entries {
		built[out] = struct{}{}
	}

	m.mu.Lock()
	m.entries = entries
	m.built = built
	m.mu.Unlock()
	return nil
}

// WithRoot sets the base path stripped from names passed to Exists.
func (m *Manifest) WithRoot(root string) *Manifest {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = strings.TrimRight(root, "/")
	return m
}

// Exists reports whether path is a source or an output of the build.
func (m *Manifest) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := strings.TrimPrefix(trimRoot(path, m.root), "/")

	if _, ok := m.entries[name]; ok {
		return true
	}
	_, ok := m.built[name]
	return ok
}

// Resolve returns the built name for source, or source itself when the
// manifest has no entry for it.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if built, ok := m.entries[strings.TrimPrefix(source, "/")]; ok {
		return built
	}
	return source
}

// Set adds or updates an entry.
func (m *Manifest) Set(source, built string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[source]; ok {
		delete(m.built, old)
	}
	m.entries[source] = built
	m.built[built] = struct{}{}
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// All returns a copy of all entries.
func (m *Manifest) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		result[k] = v
	}
	return result
}
