// Package server implements the remote-control WebSocket listener:
// accept loop, per-connection session lifecycle, and process-wide
// running/port state.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartlab-classroom/peerfabric/internal/coreerr"
	"github.com/smartlab-classroom/peerfabric/internal/health"
	"github.com/smartlab-classroom/peerfabric/internal/logging"
	"github.com/smartlab-classroom/peerfabric/internal/remote/desktop"
)

var log = logging.L("remoteserver")

const httpShutdownTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server owns the TCP listener that accepts remote-control WebSocket
// connections. The listening port and running flag are process-wide
// atomics so the command surface can query them without holding s's lock.
type Server struct {
	sessions *desktop.SessionManager
	health   *health.Monitor

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server

	running atomic.Bool
	port    atomic.Int32

	streamConfig desktop.StreamConfig
}

// New creates a remote-control server. monitor may be nil. A
// zero-valued streamConfig (FrameDelay <= 0) falls back to
// desktop.DefaultStreamConfig().
func New(monitor *health.Monitor, streamConfig desktop.StreamConfig) *Server {
	if streamConfig.FrameDelay <= 0 {
		streamConfig = desktop.DefaultStreamConfig()
	}
	return &Server{
		sessions:     desktop.NewSessionManager(),
		health:       monitor,
		streamConfig: streamConfig,
	}
}

// Start binds the TCP listener on port (0 lets the OS choose) and
// begins accepting WebSocket upgrades in the background. Returns the
// bound port. A no-op, returning the current port, if already running.
func (s *Server) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return int(s.port.Load()), nil
	}

	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, coreerr.Wrap(coreerr.IoFailure, "failed to bind remote-control port", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)

	httpServer := &http.Server{Handler: mux}

	s.listener = ln
	s.httpServer = httpServer
	boundPort := ln.Addr().(*net.TCPAddr).Port
	s.port.Store(int32(boundPort))
	s.running.Store(true)
	s.setHealth(health.Healthy, "listening")

	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("remote-control listener exited", logging.KeyError, err)
			s.setHealth(health.Unhealthy, err.Error())
		}
	}()

	log.Info("remote-control server started", "port", boundPort)
	return boundPort, nil
}

// Stop stops every active session, waiting for each session's frame
// pump and input consumer to exit, then shuts down the listener and
// returns once the accept loop has exited. Sessions are not left
// running after Stop returns.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return nil
	}
	s.running.Store(false)
	httpServer := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()

	s.sessions.StopAll()

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return coreerr.Wrap(coreerr.IoFailure, "failed to shut down remote-control listener", err)
		}
	}

	s.port.Store(0)
	s.setHealth(health.Unknown, "stopped")
	log.Info("remote-control server stopped")
	return nil
}

// Running reports whether the server is currently accepting connections.
func (s *Server) Running() bool {
	return s.running.Load()
}

// Port reports the bound TCP port, or 0 if not running.
func (s *Server) Port() int {
	return int(s.port.Load())
}

// ActiveSessions reports the number of active remote-control sessions.
func (s *Server) ActiveSessions() int {
	return s.sessions.ActiveCount()
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("websocket upgrade failed", "remote", r.RemoteAddr, logging.KeyError, err)
		return
	}

	id := r.RemoteAddr
	s.mu.Lock()
	config := s.streamConfig
	s.mu.Unlock()

	session, err := s.sessions.Accept(id, conn, config)
	if err != nil {
		log.Error("failed to start session", "remote", id, logging.KeyError, err)
		conn.Close()
		return
	}

	log.Info("remote-control session started", "session", id)
	go func() {
		session.Wait()
		s.sessions.Remove(id)
		session.ReleaseResources()
		log.Info("remote-control session closed", "session", id)
	}()
}

func (s *Server) setHealth(status health.Status, message string) {
	if s.health == nil {
		return
	}
	s.health.Update("remote_server", status, message)
}
