package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
)

const sceneWriteWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboards
	},
}

type sceneMessage struct {
	Type      string       `json:"type"`
	Timestamp int64        `json:"timestamp"`
	Scene     sim.Snapshot `json:"scene"`
}

// SceneHandler broadcasts simulation snapshots over WebSocket.
type SceneHandler struct {
	source   SceneSource
	interval time.Duration
	log      logrus.FieldLogger

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSceneHandler creates a SceneHandler and starts its broadcast loop.
func NewSceneHandler(source SceneSource, interval time.Duration, log logrus.FieldLogger) *SceneHandler {
	h := &SceneHandler{
		source:   source,
		interval: interval,
		log:      log,
		clients:  make(map[*websocket.Conn]bool),
		stop:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP upgrades the request and keeps the client registered until
// it disconnects.
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *SceneHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop.
func (h *SceneHandler) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *SceneHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastFrame uint64
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}
		snap, ok := h.source.Snapshot()
		if !ok || snap.Frame == lastFrame {
			continue
		}
		lastFrame = snap.Frame

		msg, err := json.Marshal(sceneMessage{
			Type:      "scene",
			Timestamp: time.Now().UnixMilli(),
			Scene:     snap,
		})
		if err != nil {
			h.log.WithError(err).Warn("failed to encode scene")
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(sceneWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// The reader loop sees the closed connection and unregisters it.
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}
