package assets

import (
	"errors"
	"testing"
)

func TestRegistryDeclare(t *testing.T) {
	b := newFakeBackbone()
	r := NewRegistry(b)

	n := r.DeclareAll([]Declaration{
		{ID: "jquery", File: "vendor/jquery.js"},
		{ID: "app", File: "js/app.js", Dependencies: []string{"jquery"}, Localize: &Localization{Key: "appData"}},
		{ID: "ui", File: "css/ui.css", Admin: true},
		{ID: "logo", File: "img/logo.svg"},
	})
	if n != 3 {
		t.Fatalf("DeclareAll() = %d, want 3", n)
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	app, ok := r.Get("app")
	if !ok {
		t.Fatal("Get(app) not found")
	}
	script := app.(*Script)
	if script.LocalizeKey() != "appData" {
		t.Errorf("LocalizeKey() = %q", script.LocalizeKey())
	}
	if ui, _ := r.Get("ui"); !ui.AdminOnly() {
		t.Error("ui should be admin only")
	}
	if _, ok := r.Get("logo"); ok {
		t.Error("logo should not be declared")
	}
}

func TestRegistryRedeclareKeepsOrder(t *testing.T) {
	r := NewRegistry(newFakeBackbone())
	r.Declare(Declaration{ID: "a", File: "a.js"})
	r.Declare(Declaration{ID: "b", File: "b.js"})
	r.Declare(Declaration{ID: "a", File: "a2.css"})

	res := r.Resources()
	if len(res) != 2 || res[0].ID() != "a" || res[1].ID() != "b" {
		t.Fatalf("Resources() = %v", res)
	}
	if res[0].Kind() != KindStyle {
		t.Errorf("redeclared a should be a style, got %v", res[0].Kind())
	}
}

func TestRegistryRegisterAll(t *testing.T) {
	r := NewRegistry(newFakeBackbone())
	r.DeclareAll([]Declaration{
		{ID: "a", File: "a.js"},
		{ID: "admin", File: "admin.js", Admin: true},
		{ID: "s", File: "s.css"},
	})

	p := &recordingPipeline{}
	r.RegisterAll(p)
	if got := p.methods(); got != "RegisterScript,RegisterStyle" {
		t.Errorf("public calls = %s", got)
	}

	p = &recordingPipeline{admin: true}
	r.RegisterAll(p)
	if got := p.methods(); got != "RegisterScript,RegisterScript,RegisterStyle" {
		t.Errorf("admin calls = %s", got)
	}
}

func TestRegistryEnqueue(t *testing.T) {
	r := NewRegistry(newFakeBackbone())
	r.DeclareAll([]Declaration{
		{ID: "a", File: "a.js"},
		{ID: "s", File: "s.css"},
	})

	p := &recordingPipeline{}
	if err := r.Enqueue(p, "s", "a"); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if got := p.methods(); got != "EnqueueStyle,EnqueueScript" {
		t.Errorf("calls = %s", got)
	}

	p = &recordingPipeline{}
	err := r.Enqueue(p, "missing", "a")
	if !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("Enqueue() error = %v, want ErrUnknownResource", err)
	}
	if got := p.methods(); got != "EnqueueScript" {
		t.Errorf("known ids should still be enqueued, calls = %s", got)
	}

	p = &recordingPipeline{}
	r.EnqueueAll(p)
	if got := p.methods(); got != "EnqueueScript,EnqueueStyle" {
		t.Errorf("EnqueueAll calls = %s", got)
	}
}
