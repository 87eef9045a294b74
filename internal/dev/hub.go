package dev

import (
	"context"
	"log/slog"
	"path/filepath"
)

// Hub forwards watcher changes to a ReloadServer.
type Hub struct {
	watcher *Watcher
	reload  *ReloadServer
	logger  *slog.Logger

	// OnManifest runs before browsers reload after a manifest change.
	OnManifest func() error
}

// NewHub creates a hub. A nil logger uses slog.Default().
func NewHub(w *Watcher, reload *ReloadServer, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{watcher: w, reload: reload, logger: logger}
}

// Run watches until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	h.watcher.OnChange(h.handle)
	return h.watcher.Start(ctx)
}

func (h *Hub) handle(c Change) {
	h.logger.Info("asset changed", "path", c.Path, "type", c.Type.String(), "removed", c.Removed)

	switch c.Type {
	case ChangeStyle:
		if c.Removed {
			h.reload.NotifyReload()
			return
		}
		h.reload.NotifyCSS(filepath.Base(c.Path))
	case ChangeScript:
		h.reload.NotifyReload()
	case ChangeManifest:
		if h.OnManifest != nil {
			if err := h.OnManifest(); err != nil {
				h.logger.Warn("manifest reload failed", "error", err)
				return
			}
		}
		h.reload.NotifyReload()
	}
}
