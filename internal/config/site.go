package config

import (
	"context"
	"log/slog"

	"github.com/vango-dev/toolbox/pkg/assets"
)

// Site is the assets.Backbone backed by a Config.
type Site struct {
	cfg        *Config
	files      assets.FileChecker
	logger     *slog.Logger
	basePath   string
	onFallback func(filename, minified string)
}

// SiteOption configures a Site.
type SiteOption func(*Site)

// WithBasePath overrides the base path handed to the file checker, for
// checkers that are not rooted at the asset directory (object stores).
func WithBasePath(path string) SiteOption {
	return func(s *Site) {
		s.basePath = path
	}
}

// WithFallbackHook is called whenever a minified file is missing.
func WithFallbackHook(fn func(filename, minified string)) SiteOption {
	return func(s *Site) {
		s.onFallback = fn
	}
}

// NewSite wraps cfg. A nil checker means assets.DirChecker and a nil logger
// means slog.Default().
func NewSite(cfg *Config, files assets.FileChecker, logger *slog.Logger, opts ...SiteOption) *Site {
	if files == nil {
		files = assets.DirChecker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Site{
		cfg:      cfg,
		files:    files,
		logger:   logger,
		basePath: cfg.AssetsPath(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the wrapped configuration.
func (s *Site) Config() *Config { return s.cfg }

// Logger returns the site logger.
func (s *Site) Logger() *slog.Logger { return s.logger }

func (s *Site) MinifyEnabled() bool { return s.cfg.Assets.Minify }
func (s *Site) BasePath() string    { return s.basePath }
func (s *Site) BaseURL() string     { return s.cfg.Assets.URL }

// Option returns options[name]. The "version" option falls back to the
// configured project version.
func (s *Site) Option(name string) string {
	if v, ok := s.cfg.Options[name]; ok {
		return v
	}
	if name == assets.OptionVersion {
		return s.cfg.Version
	}
	return ""
}

func (s *Site) Log(level slog.Level, msg string) {
	s.logger.Log(context.Background(), level, msg, "site", s.cfg.Name)
}

func (s *Site) Exists(path string) bool {
	return s.files.Exists(path)
}

// MinifyFallback implements assets.FallbackNotifier.
func (s *Site) MinifyFallback(filename, minified string) {
	if s.onFallback != nil {
		s.onFallback(filename, minified)
	}
}
