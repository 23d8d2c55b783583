package exporter

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/mhz19/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Samples buffered per client before new ones are dropped
	clientBuffer = 8
)

// handleWebSocket streams samples to the client until it disconnects or the
// server shuts down. The latest sample, if any, is sent first.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	remoteAddr := conn.RemoteAddr().String()

	s.wg.Add(1)
	s.mu.Lock()
	s.clients[remoteAddr] = conn
	s.mu.Unlock()

	samples, unsubscribe := s.poller.Subscribe(clientBuffer)

	defer func() {
		unsubscribe()
		_ = conn.Close()
		s.mu.Lock()
		delete(s.clients, remoteAddr)
		s.mu.Unlock()
		s.wg.Done()
		logging.Info("WebSocket client disconnected", zap.String("remote_addr", remoteAddr))
	}()

	logging.Info("WebSocket client connected", zap.String("remote_addr", remoteAddr))

	// The client never sends data, but reading is required to process
	// control frames and notice a close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if latest, ok := s.poller.Latest(); ok {
		if err := writeSample(conn, latest); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case sample, ok := <-samples:
			if !ok {
				return
			}
			if err := writeSample(conn, sample); err != nil {
				logging.Debug("WebSocket write failed",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeSample(conn *websocket.Conn, s Sample) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(s)
}
