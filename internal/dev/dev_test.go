package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startWatcher(t *testing.T, config WatcherConfig) <-chan Change {
	t.Helper()
	config.Interval = 20 * time.Millisecond
	w := NewWatcher(config)

	changes := make(chan Change, 10)
	w.OnChange(func(c Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx)

	// let the initial scan finish
	time.Sleep(60 * time.Millisecond)
	return changes
}

func waitChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
		return Change{}
	}
}

func TestWatcher_NewStyle(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, WatcherConfig{Paths: []string{dir}})

	file := filepath.Join(dir, "theme.css")
	if err := os.WriteFile(file, []byte("body{}"), 0644); err != nil {
		t.Fatal(err)
	}

	c := waitChange(t, changes)
	if c.Type != ChangeStyle || c.Path != file || c.Removed {
		t.Errorf("change = %+v", c)
	}
}

func TestWatcher_ModifiedScript(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.js")
	if err := os.WriteFile(file, []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}
	changes := startWatcher(t, WatcherConfig{Paths: []string{dir}})

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(file, later, later); err != nil {
		t.Fatal(err)
	}

	c := waitChange(t, changes)
	if c.Type != ChangeScript || c.Path != file {
		t.Errorf("change = %+v", c)
	}
}

func TestWatcher_Removed(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.js")
	if err := os.WriteFile(file, []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}
	changes := startWatcher(t, WatcherConfig{Paths: []string{dir}})

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}

	c := waitChange(t, changes)
	if !c.Removed || c.Type != ChangeScript {
		t.Errorf("change = %+v", c)
	}
}

func TestWatcher_Manifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(t.TempDir(), "manifest.json")
	changes := startWatcher(t, WatcherConfig{Paths: []string{dir}, Manifest: manifest})

	if err := os.WriteFile(manifest, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	c := waitChange(t, changes)
	if c.Type != ChangeManifest {
		t.Errorf("change = %+v, want manifest", c)
	}
}

func TestWatcher_PollOnly(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, WatcherConfig{Paths: []string{dir}, Poll: true})

	file := filepath.Join(dir, "app.js")
	if err := os.WriteFile(file, []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}

	c := waitChange(t, changes)
	if c.Type != ChangeScript || c.Path != file {
		t.Errorf("change = %+v", c)
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, WatcherConfig{Paths: []string{dir}})

	sub := filepath.Join(dir, "css")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "theme.css")
	if err := os.WriteFile(file, []byte("body{}"), 0644); err != nil {
		t.Fatal(err)
	}

	c := waitChange(t, changes)
	if c.Type != ChangeStyle || c.Path != file {
		t.Errorf("change = %+v", c)
	}
}

func TestWatcher_LogsUnwatchableDirectory(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	missing := filepath.Join(t.TempDir(), "gone", "manifest.json")
	w := NewWatcher(WatcherConfig{Paths: []string{t.TempDir()}, Manifest: missing, Logger: logger})

	fw := w.notifier()
	if fw == nil {
		t.Skip("filesystem notifications unavailable")
	}
	fw.Close()

	out := buf.String()
	if !strings.Contains(out, "cannot watch directory") || !strings.Contains(out, filepath.Dir(missing)) {
		t.Errorf("log = %q, want a debug line for %s", out, filepath.Dir(missing))
	}
}

func TestWatcher_WatchDirs(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"js", "node_modules/pkg"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	manifest := filepath.Join(t.TempDir(), "manifest.json")
	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Manifest: manifest})

	got := strings.Join(w.watchDirs(), ",")
	want := strings.Join([]string{dir, filepath.Join(dir, "js"), filepath.Dir(manifest)}, ",")
	if got != want {
		t.Errorf("watchDirs = %s, want %s", got, want)
	}
}

func TestWatcher_Ignore(t *testing.T) {
	w := NewWatcher(WatcherConfig{Ignore: []string{"*.map", "node_modules", "vendor/lib"}})

	tests := []struct {
		path string
		want bool
	}{
		{"/srv/public/app.js.map", true},
		{"/srv/public/node_modules/x/a.js", true},
		{"/srv/vendor/lib/a.js", true},
		{"/srv/vendor/library/a.js", false},
		{"/srv/public/app.js", false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w := NewWatcher(WatcherConfig{Paths: []string{t.TempDir()}})
	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	deadline := time.Now().Add(time.Second)
	for !w.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestClassifyChange(t *testing.T) {
	tests := map[string]ChangeType{
		"a.js":      ChangeScript,
		"a.min.JS":  ChangeScript,
		"a.mjs":     ChangeScript,
		"b.css":     ChangeStyle,
		"logo.png":  ChangeOther,
		"README.md": ChangeOther,
	}
	for path, want := range tests {
		if got := classifyChange(path); got != want {
			t.Errorf("classifyChange(%q) = %v, want %v", path, got, want)
		}
	}
}

func dialReload(t *testing.T, s *ReloadServer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", s.ClientCount())
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad message %q: %v", data, err)
	}
	return msg
}

func TestReloadServer_Broadcast(t *testing.T) {
	s := NewReloadServer(nil)
	conn := dialReload(t, s)

	s.NotifyCSS("theme.css")
	if msg := readMessage(t, conn); msg.Type != MessageCSS || msg.File != "theme.css" {
		t.Errorf("message = %+v", msg)
	}

	s.NotifyReload()
	if msg := readMessage(t, conn); msg.Type != MessageReload {
		t.Errorf("message = %+v", msg)
	}

	s.Close()
	if s.ClientCount() != 0 {
		t.Errorf("ClientCount() after Close = %d", s.ClientCount())
	}
}

func TestHub_Handle(t *testing.T) {
	s := NewReloadServer(nil)
	conn := dialReload(t, s)

	manifestLoads := 0
	hub := NewHub(NewWatcher(WatcherConfig{}), s, nil)
	hub.OnManifest = func() error {
		manifestLoads++
		return nil
	}

	hub.handle(Change{Path: "/srv/public/theme.css", Type: ChangeStyle})
	if msg := readMessage(t, conn); msg.Type != MessageCSS || msg.File != "theme.css" {
		t.Errorf("style change sent %+v", msg)
	}

	hub.handle(Change{Path: "/srv/manifest.json", Type: ChangeManifest})
	if msg := readMessage(t, conn); msg.Type != MessageReload {
		t.Errorf("manifest change sent %+v", msg)
	}
	if manifestLoads != 1 {
		t.Errorf("OnManifest called %d times", manifestLoads)
	}

	hub.handle(Change{Path: "/srv/public/theme.css", Type: ChangeStyle, Removed: true})
	if msg := readMessage(t, conn); msg.Type != MessageReload {
		t.Errorf("removed style sent %+v", msg)
	}
}

func TestServeClientScript(t *testing.T) {
	rec := httptest.NewRecorder()
	ServeClientScript(rec, httptest.NewRequest(http.MethodGet, ScriptPath, nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/javascript") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), SocketPath) {
		t.Error("client script does not dial the reload socket")
	}
}
