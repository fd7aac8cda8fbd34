package desktop

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/smartlab-classroom/peerfabric/internal/coreerr"
)

// SessionManager tracks the remote-control sessions accepted by the
// server's WebSocket listener, keyed by an opaque session ID (the
// accepting connection's remote address).
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Accept creates, registers, and starts a session for a freshly upgraded
// connection. The returned session is already streaming.
func (m *SessionManager) Accept(id string, conn *websocket.Conn, config StreamConfig) (*Session, error) {
	session, err := NewSession(id, conn, config)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		m.closeSession(existing)
		m.mu.Lock()
	}
	m.sessions[id] = session
	m.mu.Unlock()

	session.Start()
	return session, nil
}

// Remove drops a session from the registry once it has closed itself
// (called by the server's accept loop after session.Wait returns).
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// StopSession stops and removes a single session by ID.
func (m *SessionManager) StopSession(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return coreerr.New(coreerr.InvalidInput, "no such remote-control session: "+id)
	}
	m.closeSession(session)
	return nil
}

// StopAll stops and removes every active session. Used on server shutdown.
func (m *SessionManager) StopAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		m.closeSession(s)
	}
}

func (m *SessionManager) closeSession(s *Session) {
	s.Stop()
	s.Wait()
	s.ReleaseResources()
}

// ActiveCount reports the number of sessions currently registered.
func (m *SessionManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
