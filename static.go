package toolbox

import (
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// staticRelPath returns a sanitized relative path for an asset request.
// It rejects traversal and absolute-path tricks so serving cannot escape
// the asset directory.
func (a *App) staticRelPath(urlPath string) (string, bool) {
	if a.staticFS == nil || a.staticDir == "" {
		return "", false
	}

	rel, ok := a.stripStaticPrefix(urlPath)
	if !ok || rel == "" {
		return "", false
	}

	// %00
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}
	if strings.Contains(rel, "\\") {
		return "", false
	}
	// "/assets//etc/passwd" => "/etc/passwd"
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Dot segments are rejected before cleaning so they cannot be cleaned
	// away.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// stripStaticPrefix removes the asset URL prefix from a request path.
func (a *App) stripStaticPrefix(urlPath string) (string, bool) {
	prefix := a.staticPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(urlPath, prefix) {
		return "", false
	}
	return strings.TrimPrefix(urlPath, prefix), true
}

// serveStatic handles asset file requests.
func (a *App) serveStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := a.staticRelPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := a.staticFS.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	a.applyCacheHeaders(w, rel)
	w.Header().Set("ETag", etag(rel, info.Size(), info.ModTime()))
	for key, value := range a.staticHeaders {
		w.Header().Set(key, value)
	}

	http.ServeContent(w, r, rel, info.ModTime(), f)
}

// applyCacheHeaders sets Cache-Control for filePath.
func (a *App) applyCacheHeaders(w http.ResponseWriter, filePath string) {
	switch *a.cacheControl {
	case CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")

	case CacheControlProduction:
		if isMinified(filePath) || isFingerprinted(filePath) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// etag is a weak validator derived from the file's name, size and
// modification time.
func etag(name string, size int64, mod time.Time) string {
	h := xxhash.New()
	h.WriteString(name)
	h.WriteString(strconv.FormatInt(size, 10))
	h.WriteString(strconv.FormatInt(mod.UnixNano(), 10))
	return `W/"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// isMinified reports whether the file is a ".min" build output, e.g.
// "app.min.js".
func isMinified(filePath string) bool {
	return strings.Contains(path.Base(filePath), ".min.")
}

// isFingerprinted checks if a file path appears to be fingerprinted, e.g.
// "app.a1b2c3d4.css".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
