package assets

import (
	"errors"
	"fmt"
)

// ErrUnknownResource is returned when an identifier has not been declared.
var ErrUnknownResource = errors.New("unknown resource")

// Localization is the data a script exposes under Key.
type Localization struct {
	Key  string            `json:"key"`
	Data map[string]string `json:"data,omitempty"`
}

// Declaration describes a resource in configuration.
type Declaration struct {
	ID           string        `json:"id"`
	File         string        `json:"file"`
	Dependencies []string      `json:"deps,omitempty"`
	Admin        bool          `json:"admin,omitempty"`
	Localize     *Localization `json:"localize,omitempty"`
}

// Options converts the declaration's optional fields into resource options.
func (d Declaration) Options() []Option {
	opts := []Option{WithAdmin(d.Admin)}
	if d.Dependencies != nil {
		opts = append(opts, WithDependencies(d.Dependencies...))
	}
	if d.Localize != nil {
		opts = append(opts, WithLocalization(d.Localize.Key, d.Localize.Data))
	}
	return opts
}

// Registry owns the resources declared for a page.
// It is not safe for concurrent use; build one per request.
type Registry struct {
	backbone Backbone
	order    []string
	byID     map[string]Resource
}

// NewRegistry creates an empty registry reading from b.
func NewRegistry(b Backbone) *Registry {
	return &Registry{
		backbone: b,
		byID:     make(map[string]Resource),
	}
}

// Declare generates a resource from d and adds it. Redeclaring an id
// replaces the previous resource but keeps its position.
func (r *Registry) Declare(d Declaration) (Resource, bool) {
	res, ok := Generate(r.backbone, d.ID, d.File, d.Options()...)
	if !ok {
		return nil, false
	}
	r.Add(res)
	return res, true
}

// DeclareAll declares every entry and returns how many were accepted.
func (r *Registry) DeclareAll(decls []Declaration) int {
	n := 0
	for _, d := range decls {
		if _, ok := r.Declare(d); ok {
			n++
		}
	}
	return n
}

// Add inserts an already constructed resource.
func (r *Registry) Add(res Resource) {
	if _, exists := r.byID[res.ID()]; !exists {
		r.order = append(r.order, res.ID())
	}
	r.byID[res.ID()] = res
}

// Get returns the resource declared under id.
func (r *Registry) Get(id string) (Resource, bool) {
	res, ok := r.byID[id]
	return res, ok
}

// Len returns the number of resources.
func (r *Registry) Len() int {
	return len(r.order)
}

// Resources returns the resources in declaration order.
func (r *Registry) Resources() []Resource {
	out := make([]Resource, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// RegisterAll registers every resource with p in declaration order.
func (r *Registry) RegisterAll(p Pipeline) {
	for _, id := range r.order {
		r.byID[id].Register(p)
	}
}

// Enqueue enqueues the named resources. Unknown ids are skipped and
// reported together in the returned error.
func (r *Registry) Enqueue(p Pipeline, ids ...string) error {
	var missing []string
	for _, id := range ids {
		res, ok := r.byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		res.Enqueue(p)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %q", ErrUnknownResource, missing)
	}
	return nil
}

// EnqueueAll enqueues every resource in declaration order.
func (r *Registry) EnqueueAll(p Pipeline) {
	for _, id := range r.order {
		r.byID[id].Enqueue(p)
	}
}
