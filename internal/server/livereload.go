package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/prime-website/internal/logging"
)

const (
	liveReloadPath       = "/livereload"
	liveReloadScriptPath = "/livereload.js"

	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// liveReloadScript reconnects after a server restart and reloads the page
// on every "reload" message.
const liveReloadScript = `(function () {
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  function connect() {
    var ws = new WebSocket(scheme + location.host + "` + liveReloadPath + `");
    ws.onmessage = function (event) {
      var msg = JSON.parse(event.data);
      if (msg.type === "reload") { location.reload(); }
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
`

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Paths     []string  `json:"paths,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// client is one connected browser tab.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// LiveReload tracks connected browsers and broadcasts reload notices.
type LiveReload struct {
	logger  logging.Logger
	clients map[*client]struct{}
	closed  bool
	mutex   sync.RWMutex
}

// NewLiveReload creates an empty hub.
func NewLiveReload(logger logging.Logger) *LiveReload {
	return &LiveReload{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the connection until the browser
// goes away or the hub is closed.
func (lr *LiveReload) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		lr.logger.Warn(r.Context(), err, "WebSocket upgrade error")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := &client{conn: conn, send: make(chan []byte, 16)}
	if !lr.register(c) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer lr.unregister(c)

	// Browsers never send anything; CloseRead handles control frames and
	// cancels ctx when the peer disconnects.
	ctx := conn.CloseRead(r.Context())
	lr.writePump(ctx, c)
}

func (lr *LiveReload) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				lr.logger.Debug(ctx, "WebSocket write error", "error", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (lr *LiveReload) register(c *client) bool {
	lr.mutex.Lock()
	defer lr.mutex.Unlock()
	if lr.closed {
		return false
	}
	lr.clients[c] = struct{}{}
	lr.logger.Debug(context.Background(), "Client connected", "total", len(lr.clients))
	return true
}

func (lr *LiveReload) unregister(c *client) {
	lr.mutex.Lock()
	defer lr.mutex.Unlock()
	if _, ok := lr.clients[c]; ok {
		delete(lr.clients, c)
		close(c.send)
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}

// Clients returns the number of connected browsers.
func (lr *LiveReload) Clients() int {
	lr.mutex.RLock()
	defer lr.mutex.RUnlock()
	return len(lr.clients)
}

// Reload tells every connected browser to reload. Clients that cannot keep
// up are dropped.
func (lr *LiveReload) Reload(paths []string) {
	msg, err := json.Marshal(UpdateMessage{Type: "reload", Paths: paths, Timestamp: time.Now().UTC()})
	if err != nil {
		lr.logger.Error(context.Background(), err, "Failed to encode reload message")
		return
	}

	lr.mutex.Lock()
	defer lr.mutex.Unlock()
	for c := range lr.clients {
		select {
		case c.send <- msg:
		default:
			delete(lr.clients, c)
			close(c.send)
		}
	}
}

// Close disconnects every client and refuses new ones.
func (lr *LiveReload) Close() {
	lr.mutex.Lock()
	defer lr.mutex.Unlock()
	lr.closed = true
	for c := range lr.clients {
		delete(lr.clients, c)
		close(c.send)
	}
}

func serveLiveReloadScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(liveReloadScript))
}

// injectLiveReload adds the client script before </body>, or at the end of
// pages without one.
func injectLiveReload(page []byte) []byte {
	tag := []byte(`<script src="` + liveReloadScriptPath + `"></script>`)
	idx := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if idx < 0 {
		return append(page, tag...)
	}

	out := make([]byte, 0, len(page)+len(tag))
	out = append(out, page[:idx]...)
	out = append(out, tag...)
	return append(out, page[idx:]...)
}
