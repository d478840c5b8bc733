package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
)

const (
	sendBuffer = 8
	writeWait  = 200 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// FrameMessage is what preview viewers receive for every frame.
type FrameMessage struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Device  string `json:"device"`
	RGB     []byte `json:"rgb"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans messages out to websocket viewers. Each client has a buffered send queue drained by
// its own writer; a full queue drops the message for that client only.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	frameID uint64
	log     zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{clients: map[*client]struct{}{}, log: log.With().Str("component", "hub").Logger()}
}

// BroadcastFrame sends f to every viewer. It never blocks on a slow viewer.
func (h *Hub) BroadcastFrame(deviceID string, f frame.Frame) {
	h.mu.Lock()
	h.frameID++
	id := h.frameID
	h.mu.Unlock()
	h.Broadcast(FrameMessage{T: time.Now().UnixNano(), FrameID: id, Device: deviceID, RGB: f.RGB()})
}

// Broadcast marshals v once and queues it for every viewer.
func (h *Hub) Broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal broadcast")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and keeps the viewer registered until it disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go writePump(conn, c.send)
	go func() {
		defer h.unregister(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		close(c.send)
	}
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump is the only writer of conn. Closing conn makes the reader unregister the client,
// which closes send and ends the pump.
func writePump(conn *websocket.Conn, send <-chan []byte) {
	for b := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			conn.Close()
			for range send {
			}
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, nil)
	conn.Close()
}
