package dev

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType classifies a changed file.
type ChangeType int

const (
	ChangeOther ChangeType = iota
	ChangeScript
	ChangeStyle
	ChangeManifest
)

func (t ChangeType) String() string {
	switch t {
	case ChangeScript:
		return "script"
	case ChangeStyle:
		return "style"
	case ChangeManifest:
		return "manifest"
	default:
		return "other"
	}
}

// Change is a created, modified or removed file.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch.
	Paths []string

	// Ignore holds base names, path segments or globs to skip.
	Ignore []string

	// Manifest is the path of the asset manifest, reported as ChangeManifest.
	Manifest string

	// Interval between scans (default: 250ms).
	Interval time.Duration

	// Poll disables filesystem notifications. Changes are then only found
	// by the periodic scan.
	Poll bool

	// Logger receives notification errors at debug level. A nil Logger
	// uses slog.Default().
	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.map",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher reports asset changes. Filesystem notifications trigger an
// immediate rescan; the periodic scan catches anything they miss.
type Watcher struct {
	config   WatcherConfig
	onChange func(Change)

	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 250 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}
	if config.Manifest != "" {
		config.Manifest = filepath.Clean(config.Manifest)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start scans until ctx is done or Stop is called. It blocks.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()

	w.scan(false)

	fw := w.notifier()
	var events <-chan fsnotify.Event
	if fw != nil {
		defer fw.Close()
		events = fw.Events
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stop:
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			w.follow(fw, ev)
			w.scan(true)
		case <-ticker.C:
			w.scan(true)
		}
	}
}

// notifier returns a filesystem watcher over every directory in the watch
// roots, or nil when polling only.
func (w *Watcher) notifier() *fsnotify.Watcher {
	if w.config.Poll {
		return nil
	}
	log := w.config.Logger
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Debug("filesystem notifications unavailable, polling", "error", err)
		return nil
	}
	for _, dir := range w.watchDirs() {
		if err := fw.Add(dir); err != nil {
			log.Debug("cannot watch directory", "dir", dir, "error", err)
		}
	}
	go func() {
		for err := range fw.Errors {
			log.Debug("filesystem notification error", "error", err)
		}
	}()
	return fw
}

// follow starts watching directories created under a watched one.
func (w *Watcher) follow(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) || w.shouldIgnore(ev.Name) {
		return
	}
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		if err := fw.Add(ev.Name); err != nil {
			w.config.Logger.Debug("cannot watch directory", "dir", ev.Name, "error", err)
		}
	}
}

func (w *Watcher) watchDirs() []string {
	var dirs []string
	for _, root := range w.watchRoots() {
		if root == w.config.Manifest {
			dirs = append(dirs, filepath.Dir(root))
			continue
		}
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if p != root && w.shouldIgnore(p) {
				return filepath.SkipDir
			}
			dirs = append(dirs, p)
			return nil
		})
	}
	return dirs
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scan refreshes the timestamp map. With report set, differences are passed
// to the callback, at most one per change type.
func (w *Watcher) scan(report bool) {
	seen := make(map[string]time.Time)
	for _, root := range w.watchRoots() {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			seen[filepath.Clean(p)] = info.ModTime()
			return nil
		})
	}

	w.mu.Lock()
	var changes []Change
	for p, mod := range seen {
		last, ok := w.timestamps[p]
		if !ok || mod.After(last) {
			changes = append(changes, Change{Path: p, Type: w.classify(p)})
		}
	}
	for p := range w.timestamps {
		if _, ok := seen[p]; !ok {
			changes = append(changes, Change{Path: p, Type: w.classify(p), Removed: true})
		}
	}
	w.timestamps = seen
	callback := w.onChange
	w.mu.Unlock()

	if !report || callback == nil {
		return
	}
	reported := make(map[ChangeType]bool)
	for _, c := range changes {
		if !reported[c.Type] {
			reported[c.Type] = true
			callback(c)
		}
	}
}

func (w *Watcher) watchRoots() []string {
	roots := append([]string(nil), w.config.Paths...)
	if w.config.Manifest == "" {
		return roots
	}
	for _, r := range roots {
		if rel, err := filepath.Rel(r, w.config.Manifest); err == nil && !strings.HasPrefix(rel, "..") {
			return roots
		}
	}
	return append(roots, w.config.Manifest)
}

func (w *Watcher) classify(p string) ChangeType {
	if w.config.Manifest != "" && p == w.config.Manifest {
		return ChangeManifest
	}
	return classifyChange(p)
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		pattern = filepath.ToSlash(pattern)
		hasSep := strings.Contains(pattern, "/")
		if strings.ContainsAny(pattern, "*?[") {
			subject := name
			if hasSep {
				subject = normalized
			}
			if ok, _ := path.Match(pattern, subject); ok {
				return true
			}
			continue
		}
		if hasSegments(normalized, pattern) {
			return true
		}
	}
	return false
}

// hasSegments reports whether the slash-separated pattern appears as a run
// of whole segments in p.
func hasSegments(p, pattern string) bool {
	parts := segments(p)
	want := segments(pattern)
	if len(want) == 0 || len(want) > len(parts) {
		return false
	}
outer:
	for i := 0; i <= len(parts)-len(want); i++ {
		for j := range want {
			if parts[i+j] != want[j] {
				continue outer
			}
		}
		return true
	}
	return false
}

func segments(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}

// classifyChange determines the type of change based on file extension.
func classifyChange(p string) ChangeType {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".js", ".mjs":
		return ChangeScript
	case ".css":
		return ChangeStyle
	default:
		return ChangeOther
	}
}
