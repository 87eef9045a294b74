package assets

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DirChecker checks paths on the local filesystem.
type DirChecker struct{}

// Exists reports whether path names a regular file.
func (DirChecker) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// fsChecker checks paths inside an fs.FS.
type fsChecker struct {
	fsys fs.FS
	root string
}

// FSChecker returns a FileChecker over fsys. Paths passed to Exists have
// root stripped and must then be valid fs.FS paths.
func FSChecker(fsys fs.FS, root string) FileChecker {
	return &fsChecker{fsys: fsys, root: strings.TrimRight(root, "/")}
}

func (c *fsChecker) Exists(path string) bool {
	name := strings.TrimPrefix(trimRoot(path, c.root), "/")
	if !fs.ValidPath(name) {
		return false
	}

	info, err := fs.Stat(c.fsys, name)
	return err == nil && !info.IsDir()
}

// trimRoot strips root from path when root is a whole leading segment, so
// "/srv/public2/app.js" is left alone under root "/srv/public".
func trimRoot(path, root string) string {
	if root == "" {
		return path
	}
	rest, ok := strings.CutPrefix(path, root)
	if !ok || (rest != "" && rest[0] != '/') {
		return path
	}
	return rest
}

// CachedChecker remembers the answers of another FileChecker for a while.
// It is meant for remote checkers that would otherwise be queried on every
// page. At most CacheSize answers are kept; the least recently used one is
// dropped first.
type CachedChecker struct {
	next  FileChecker
	cache *expirable.LRU[string, bool]
}

// CacheSize bounds the number of answers a CachedChecker keeps.
const CacheSize = 4096

// NewCachedChecker wraps next. A ttl <= 0 caches answers until they are
// evicted by size or Purge.
func NewCachedChecker(next FileChecker, ttl time.Duration) *CachedChecker {
	return &CachedChecker{
		next:  next,
		cache: expirable.NewLRU[string, bool](CacheSize, nil, ttl),
	}
}

func (c *CachedChecker) Exists(path string) bool {
	if exists, ok := c.cache.Get(path); ok {
		return exists
	}
	exists := c.next.Exists(path)
	c.cache.Add(path, exists)
	return exists
}

// Len returns the number of cached answers.
func (c *CachedChecker) Len() int {
	return c.cache.Len()
}

// Purge forgets every cached answer.
func (c *CachedChecker) Purge() {
	c.cache.Purge()
}
