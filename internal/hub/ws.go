package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsMaxPayloadBytes = 1 << 20
	wsTickInterval    = 15 * time.Second
	wsPongWait        = 45 * time.Second
	wsWriteWait       = 10 * time.Second
)

// WSHandler upgrades HTTP requests and streams hub events to the socket.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWSHandler creates the /events WebSocket handler.
func NewWSHandler(h *Hub) *WSHandler {
	return &WSHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  8192,
			WriteBufferSize: 8192,
			CheckOrigin: func(*http.Request) bool {
				// The server binds to loopback; cross-origin pages on the
				// same host are legitimate clients.
				return true
			},
		},
	}
}

// ServeHTTP upgrades the connection and runs the session until either side
// disconnects.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := h.hub.Subscribe()
	ctx, cancel := context.WithCancel(r.Context())

	session := &wsSession{
		hub:    h.hub,
		conn:   conn,
		sub:    sub,
		ctx:    ctx,
		cancel: cancel,
	}
	session.run()
}

type wsSession struct {
	hub    *Hub
	conn   *websocket.Conn
	sub    *Subscriber
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *wsSession) run() {
	defer s.close()
	go s.readLoop()
	s.writeLoop()
}

func (s *wsSession) close() {
	s.cancel()
	s.hub.Unsubscribe(s.sub)
	_ = s.conn.Close()
}

// readLoop discards inbound frames; the server never reads messages, but the
// read pump is required to process pongs and detect disconnects.
func (s *wsSession) readLoop() {
	defer s.cancel()

	s.conn.SetReadLimit(wsMaxPayloadBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *wsSession) writeLoop() {
	ticker := time.NewTicker(wsTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
