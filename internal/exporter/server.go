package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/muurk/mhz19/internal/logging"
)

// ShutdownTimeout bounds how long in-flight requests get after the context is
// cancelled.
const ShutdownTimeout = 5 * time.Second

// Server serves metrics, the latest sample and the sample stream.
type Server struct {
	addr     string
	poller   *Poller
	registry *prometheus.Registry
	upgrader websocket.Upgrader

	wg      sync.WaitGroup
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewServer creates a server for poller. Metrics are served from reg.
func NewServer(addr string, poller *Poller, reg *prometheus.Registry) *Server {
	return &Server{
		addr:     addr,
		poller:   poller,
		registry: reg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*websocket.Conn),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(s.registry))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/latest", s.handleLatest)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Exporter listening", zap.String("addr", ln.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logging.Info("Shutting down exporter...")
		return s.shutdown(httpServer)
	}
}

func (s *Server) shutdown(httpServer *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)

	// Hijacked WebSocket connections are not tracked by http.Server
	s.mu.Lock()
	for addr, conn := range s.clients {
		logging.Debug("Closing websocket client", zap.String("remote_addr", addr))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("Exporter stopped")
	case <-shutdownCtx.Done():
		logging.Warn("Shutdown timeout, some connections may not have closed cleanly")
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.poller.Healthy() {
		http.Error(w, "no successful reading", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	sample, ok := s.poller.Latest()
	if !ok {
		http.Error(w, "no reading yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sample); err != nil {
		logging.Error("Failed to encode sample", zap.Error(err))
	}
}
