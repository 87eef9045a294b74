package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	// ScriptPath serves ClientScript.
	ScriptPath = "/_toolbox/reload.js"

	// SocketPath is the WebSocket endpoint the client script dials.
	SocketPath = "/_toolbox/reload"

	// ScriptHandle is the resource id the reload script is registered under.
	ScriptHandle = "toolbox-reload"
)

// MessageType is the kind of a reload message.
type MessageType string

const (
	MessageReload MessageType = "reload"
	MessageCSS    MessageType = "css"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type MessageType `json:"type"`
	File string      `json:"file,omitempty"`
}

// ReloadServer keeps the set of connected browsers.
type ReloadServer struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewReloadServer creates a reload server. A nil logger uses slog.Default().
func NewReloadServer(logger *slog.Logger) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadServer{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// dev only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the request and holds the connection until the
// browser goes away.
func (s *ReloadServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("reload upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.drop(conn)
}

// NotifyReload asks every browser for a full reload.
func (s *ReloadServer) NotifyReload() {
	s.broadcast(Message{Type: MessageReload})
}

// NotifyCSS asks every browser to refetch its stylesheets.
func (s *ReloadServer) NotifyCSS(file string) {
	s.broadcast(Message{Type: MessageCSS, File: file})
}

func (s *ReloadServer) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			s.drop(c)
		}
	}
	s.logger.Debug("reload broadcast", "type", string(msg.Type), "clients", len(clients))
}

func (s *ReloadServer) drop(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.Close()
}

// ClientCount returns the number of connected browsers.
func (s *ReloadServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close disconnects every browser.
func (s *ReloadServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
}

// ServeClientScript writes ClientScript as JavaScript.
func ServeClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte(ClientScript))
}

// ClientScript connects to SocketPath and applies reload messages.
const ClientScript = `(function() {
    'use strict';

    var delay = 1000;
    var maxDelay = 30000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/_toolbox/reload');

        ws.onopen = function() {
            delay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            if (msg.type === 'reload') {
                location.reload();
            } else if (msg.type === 'css') {
                restyle();
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, maxDelay);
                connect();
            }, delay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function restyle() {
        document.querySelectorAll('link[rel="stylesheet"]').forEach(function(link) {
            var url = new URL(link.href);
            url.searchParams.set('_reload', Date.now());
            link.href = url.toString();
        });
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
`
