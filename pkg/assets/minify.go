package assets

import (
	"fmt"
	"log/slog"
	"strings"
)

const minSuffix = ".min"

// resolveURL returns the URL for filename, preferring the minified variant
// when minification is on and the variant exists under the base path.
//
// The minified name is produced by replacing the first occurrence of ext
// anywhere in filename, not only the trailing one, so "vendor.js/app.js"
// becomes "vendor.min.js/app.js".
func resolveURL(b Backbone, filename, ext string) string {
	candidate := filename
	if b.MinifyEnabled() && !hasSuffix(filename, minSuffix+ext) {
		candidate = strings.Replace(filename, ext, minSuffix+ext, 1)
	}

	if candidate != filename && !b.Exists(joinPaths(b.BasePath(), candidate)) {
		b.Log(slog.LevelInfo, fmt.Sprintf("minified version %q not found, falling back to %q", candidate, filename))
		if n, ok := b.(FallbackNotifier); ok {
			n.MinifyFallback(filename, candidate)
		}
		candidate = filename
	}

	return joinPaths(b.BaseURL(), candidate)
}

// MinifiedName returns the name resolveURL would try for filename, and
// whether it differs from filename.
func MinifiedName(filename string) (string, bool) {
	var ext string
	switch KindOf(filename) {
	case KindScript:
		ext = extScript
	case KindStyle:
		ext = extStyle
	default:
		return filename, false
	}
	if hasSuffix(filename, minSuffix+ext) {
		return filename, false
	}
	name := strings.Replace(filename, ext, minSuffix+ext, 1)
	return name, name != filename
}
