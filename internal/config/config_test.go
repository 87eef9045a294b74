package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/toolbox/internal/errors"
	"github.com/vango-dev/toolbox/pkg/assets"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	cfg := New()
	if cfg.Assets.Dir != DefaultAssetsDir || cfg.Assets.URL != DefaultAssetsURL {
		t.Errorf("Assets = %+v", cfg.Assets)
	}
	if cfg.Server.Port != DefaultPort || cfg.Server.Host != DefaultHost {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Admin.Prefix != DefaultAdminPrefix {
		t.Errorf("Admin.Prefix = %q", cfg.Admin.Prefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
  "name": "shop",
  "version": "2.3.0",
  "assets": {"dir": "static", "url": "https://cdn.example.com/shop/", "minify": true},
  "options": {"textDomain": "shop"},
  "resources": [
    {"id": "jquery", "file": "vendor/jquery.js"},
    {"id": "app", "file": "js/app.js", "deps": ["jquery"], "localize": {"key": "shop", "data": {"ajaxUrl": "/api"}}},
    {"id": "admin", "file": "css/admin.css", "admin": true}
  ]
}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "shop" || cfg.Version != "2.3.0" {
		t.Errorf("Name/Version = %q/%q", cfg.Name, cfg.Version)
	}
	if !cfg.Assets.Minify || cfg.AssetsPath() != filepath.Join(dir, "static") {
		t.Errorf("Assets = %+v, path %q", cfg.Assets, cfg.AssetsPath())
	}
	if !cfg.IsRemoteURL() {
		t.Error("IsRemoteURL() = false for a CDN URL")
	}
	if len(cfg.Resources) != 3 {
		t.Fatalf("got %d resources, want 3", len(cfg.Resources))
	}
	app := cfg.Resources[1]
	if app.Localize == nil || app.Localize.Key != "shop" || app.Localize.Data["ajaxUrl"] != "/api" {
		t.Errorf("app localize = %+v", app.Localize)
	}
	if !cfg.Resources[2].Admin {
		t.Error("admin resource should be admin only")
	}

	// defaults for omitted sections
	if cfg.Server.Port != DefaultPort || cfg.Admin.Prefix != DefaultAdminPrefix || cfg.Log.Format != "text" {
		t.Errorf("defaults not applied: %+v %+v %+v", cfg.Server, cfg.Admin, cfg.Log)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	var te *errors.ToolboxError
	if !stderrors.As(err, &te) || te.Code != "T100" {
		t.Fatalf("Load() error = %v, want T100", err)
	}
}

func TestLoadSyntaxErrorHasLocation(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "{\n  \"name\": \"shop\",\n  \"version\" 1\n}\n")

	_, err := LoadFile(path)
	var te *errors.ToolboxError
	if !stderrors.As(err, &te) || te.Code != "T101" {
		t.Fatalf("LoadFile() error = %v, want T101", err)
	}
	if te.Location == nil || te.Location.Line != 3 {
		t.Errorf("Location = %+v, want line 3", te.Location)
	}
}

func TestLoadTypeError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"server": {"port": "eighty"}}`)

	_, err := LoadFile(path)
	var te *errors.ToolboxError
	if !stderrors.As(err, &te) || te.Code != "T101" {
		t.Fatalf("LoadFile() error = %v, want T101", err)
	}
	if te.Location == nil {
		t.Error("type errors should carry a location")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Name = "blog"
	cfg.Resources = []assets.Declaration{{ID: "app", File: "app.js"}}

	path := filepath.Join(dir, ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Name != "blog" || len(loaded.Resources) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"s3 bucket", func(c *Config) { c.Storage.S3 = &S3Config{} }},
		{"resource id", func(c *Config) { c.Resources = []assets.Declaration{{File: "a.js"}} }},
		{"duplicate id", func(c *Config) {
			c.Resources = []assets.Declaration{{ID: "a", File: "a.js"}, {ID: "a", File: "a.css"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			var te *errors.ToolboxError
			if !stderrors.As(err, &te) || te.Code != "T102" {
				t.Errorf("Validate() = %v, want T102", err)
			}
		})
	}
}

func TestValidateResourceType(t *testing.T) {
	cfg := New()
	cfg.Resources = []assets.Declaration{{ID: "app", File: "app.js"}, {ID: "logo", File: "img/logo.svg"}}

	err := cfg.Validate()
	var te *errors.ToolboxError
	if !stderrors.As(err, &te) || te.Code != "T111" {
		t.Fatalf("Validate() = %v, want T111", err)
	}
	if len(te.Resources) != 1 || te.Resources[0] != (errors.ResourceRef{ID: "logo", File: "img/logo.svg"}) {
		t.Errorf("Resources = %+v", te.Resources)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `{}`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(root)
	if gotEval, _ := filepath.EvalSymlinks(got); gotEval != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}
}

func TestSiteBackbone(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"version": "3.0.0", "assets": {"minify": true, "url": "/static/"}, "options": {"locale": "fr"}}`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	m := assets.NewManifest().WithRoot(cfg.AssetsPath())
	m.Set("app.js", "app.min.js")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	var fallbacks []string
	site := NewSite(cfg, m, logger, WithFallbackHook(func(_, minified string) {
		fallbacks = append(fallbacks, minified)
	}))

	if !site.MinifyEnabled() || site.BaseURL() != "/static/" || site.BasePath() != cfg.AssetsPath() {
		t.Errorf("site = %+v", site)
	}
	if site.Option("version") != "3.0.0" || site.Option("locale") != "fr" || site.Option("missing") != "" {
		t.Errorf("Option() values wrong")
	}

	if got := assets.NewScript(site, "app", "app.js").URL(); got != "/static/app.min.js" {
		t.Errorf("app URL = %q", got)
	}
	if got := assets.NewStyle(site, "ui", "ui.css").URL(); got != "/static/ui.css" {
		t.Errorf("ui URL = %q", got)
	}
	if len(fallbacks) != 1 || fallbacks[0] != "ui.min.css" {
		t.Errorf("fallbacks = %v", fallbacks)
	}
	if !strings.Contains(buf.String(), "falling back") {
		t.Errorf("expected fallback log, got %q", buf.String())
	}
}

func TestSiteVersionOptionOverride(t *testing.T) {
	cfg := New()
	cfg.Options = map[string]string{"version": "override"}
	site := NewSite(cfg, nil, nil)
	if got := site.Option(assets.OptionVersion); got != "override" {
		t.Errorf("Option(version) = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn} {
		got, err := ParseLevel(name)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", name, got, err)
		}
	}
}
