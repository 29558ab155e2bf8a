package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/yogkalp/internal/app"
	"github.com/ayusman/yogkalp/internal/landmark"
)

const (
	// maxFrameSize bounds one incoming landmark frame.
	maxFrameSize = 1 << 20
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// liveResult is the per-frame message sent to live clients.
type liveResult struct {
	app.FrameResult
	// Countdown is the capture countdown in seconds.
	Countdown float64 `json:"countdown"`
}

type liveError struct {
	Error string `json:"error"`
}

// client is one live connection. Writes are serialized per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// LiveHandler accepts landmark frames over WebSocket, runs them through the
// pipeline and broadcasts every result to all connected clients.
type LiveHandler struct {
	app     *app.App
	logger  *zap.SugaredLogger
	clients map[*client]bool
	mu      sync.RWMutex
	now     func() time.Time
}

// NewLiveHandler creates a new LiveHandler for the given application.
func NewLiveHandler(a *app.App, logger *zap.SugaredLogger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LiveHandler{
		app:     a,
		logger:  logger,
		clients: make(map[*client]bool),
		now:     time.Now,
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameSize)

	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debugw("Live connection closed", "error", err)
			}
			return
		}

		var frame landmark.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			msg, _ := json.Marshal(liveError{Error: "invalid frame: " + err.Error()})
			if err := c.send(msg); err != nil {
				return
			}
			continue
		}

		result := h.app.ProcessFrame(frame, h.now())
		msg, err := json.Marshal(liveResult{
			FrameResult: result,
			Countdown:   result.Countdown.Seconds(),
		})
		if err != nil {
			h.logger.Warnw("Failed to encode frame result", "error", err)
			continue
		}
		h.broadcast(msg)
	}
}

// broadcast sends msg to all connected clients.
func (h *LiveHandler) broadcast(msg []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			h.logger.Debugw("Failed to send live result", "error", err)
		}
	}
}

// Clients returns the number of connected clients.
func (h *LiveHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes every live connection.
func (h *LiveHandler) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.mu.Unlock()
		c.conn.Close()
	}
}
