package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/hologram/internal/interaction"
	"github.com/ayusman/hologram/internal/metrics"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// clientMessage is what display clients may send. Only viewport reports
// are understood.
type clientMessage struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FrameHandler streams render frames to websocket clients.
type FrameHandler struct {
	session Session
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewFrameHandler creates a FrameHandler over session.
func NewFrameHandler(session Session, m *metrics.Metrics, log *slog.Logger) *FrameHandler {
	return &FrameHandler{session: session, metrics: m, log: log}
}

// ServeHTTP upgrades the request and writes every frame the session
// publishes until either side goes away. A client that falls behind misses
// frames rather than slowing the render loop.
func (h *FrameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	h.metrics.WSClientConnected()
	defer h.metrics.WSClientDisconnected()

	frames, unsubscribe := h.session.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go h.readLoop(conn, done)

	for {
		select {
		case <-done:
			return
		case frame, ok := <-frames:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session stopped"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

// readLoop applies viewport reports until the connection fails.
func (h *FrameHandler) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debug("ignoring malformed client message", "error", err)
			continue
		}
		if msg.Type == "viewport" {
			h.session.SetViewport(interaction.Viewport{Width: msg.Width, Height: msg.Height})
		}
	}
}
