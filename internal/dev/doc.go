// Package dev provides live reload for asset development.
//
// A Watcher polls the asset directory and reports script, style and
// manifest changes. A ReloadServer pushes those changes to connected
// browsers over WebSocket. Hub ties the two together.
//
// # Usage
//
//	reload := dev.NewReloadServer(logger)
//	w := dev.NewWatcher(dev.WatcherConfig{Paths: []string{"public"}})
//	hub := dev.NewHub(w, reload, logger)
//	go hub.Run(ctx)
//
//	r.Get(dev.ScriptPath, dev.ServeClientScript)
//	r.Get(dev.SocketPath, reload.HandleWebSocket)
//
// # Reload Protocol
//
// The browser connects to /_toolbox/reload. Messages are JSON-encoded:
//
//	{"type": "reload"}                    // full page reload
//	{"type": "css", "file": "theme.css"}  // restyle without reloading
package dev
