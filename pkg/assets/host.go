package assets

import "log/slog"

// Pipeline is the host page pipeline that resources register with.
//
// Implementations decide what repeated registration means; resources call
// through on every Register.
type Pipeline interface {
	RegisterScript(id, url string, deps []string, version string)
	RegisterStyle(id, url string, deps []string, version string)
	EnqueueScript(id string)
	EnqueueStyle(id string)
	LocalizeScript(id, key string, data map[string]string)

	// IsAdmin reports whether the current request is an administrative one.
	IsAdmin() bool
}

// FileChecker reports whether a file exists at path.
type FileChecker interface {
	Exists(path string) bool
}

// Backbone is the owning configuration a resource reads from.
// Resources keep a reference to it but never modify it.
type Backbone interface {
	FileChecker

	// MinifyEnabled reports whether ".min" variants should be preferred.
	MinifyEnabled() bool

	// BasePath is the filesystem (or object store) root of the assets.
	BasePath() string

	// BaseURL is the URL the asset filenames are rooted at.
	BaseURL() string

	// Option returns a named configuration option, or "" when unset.
	Option(name string) string

	// Log records a message at the given level.
	Log(level slog.Level, msg string)
}

// FallbackNotifier is implemented by a Backbone that wants to know when a
// minified file was missing and the original was used instead.
type FallbackNotifier interface {
	MinifyFallback(filename, minified string)
}

// OptionVersion is the Backbone option passed as the version of every
// registered resource.
const OptionVersion = "version"
