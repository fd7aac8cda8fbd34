package desktop

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestSession upgrades a fresh httptest server connection and
// accepts it into mgr under id. It skips the test if screen capture
// isn't available in the current environment (headless CI, no cgo
// build, no attached display), mirroring the rest of this codebase's
// tolerance for platform-dependent capture availability.
func dialTestSession(t *testing.T, mgr *SessionManager, id string) (*Session, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConnCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverConnCh <- conn
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("client dial failed: %v", err)
	}

	serverConn := <-serverConnCh

	session, err := mgr.Accept(id, serverConn, DefaultStreamConfig())
	if err != nil {
		clientConn.Close()
		srv.Close()
		t.Skipf("screen capture unavailable in this environment: %v", err)
	}

	cleanup := func() {
		clientConn.Close()
		srv.Close()
	}
	return session, cleanup
}

func TestSessionManagerAcceptTracksActiveCount(t *testing.T) {
	mgr := NewSessionManager()
	_, cleanup := dialTestSession(t, mgr, "peer-1")
	defer cleanup()

	if got := mgr.ActiveCount(); got != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", got)
	}
}

func TestSessionManagerStopSessionRemovesIt(t *testing.T) {
	mgr := NewSessionManager()
	_, cleanup := dialTestSession(t, mgr, "peer-1")
	defer cleanup()

	if err := mgr.StopSession("peer-1"); err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	if got := mgr.ActiveCount(); got != 0 {
		t.Fatalf("ActiveCount() after stop = %d, want 0", got)
	}
}

func TestSessionManagerStopSessionUnknownIDFails(t *testing.T) {
	mgr := NewSessionManager()
	if err := mgr.StopSession("no-such-session"); err == nil {
		t.Fatal("expected an error stopping a session ID that was never accepted")
	}
}

func TestSessionManagerAcceptReplacesExistingID(t *testing.T) {
	mgr := NewSessionManager()
	_, cleanup1 := dialTestSession(t, mgr, "peer-1")
	defer cleanup1()
	_, cleanup2 := dialTestSession(t, mgr, "peer-1")
	defer cleanup2()

	if got := mgr.ActiveCount(); got != 1 {
		t.Fatalf("ActiveCount() = %d, want 1 after re-accepting the same ID", got)
	}
}

func TestSessionManagerStopAllClearsEverySession(t *testing.T) {
	mgr := NewSessionManager()
	_, cleanup1 := dialTestSession(t, mgr, "peer-1")
	defer cleanup1()
	_, cleanup2 := dialTestSession(t, mgr, "peer-2")
	defer cleanup2()

	mgr.StopAll()
	if got := mgr.ActiveCount(); got != 0 {
		t.Fatalf("ActiveCount() after StopAll = %d, want 0", got)
	}
}

func TestSessionUpdateConfigIgnoresOutOfRangeValues(t *testing.T) {
	mgr := NewSessionManager()
	session, cleanup := dialTestSession(t, mgr, "peer-1")
	defer cleanup()
	defer mgr.StopAll()

	session.UpdateConfig(StreamConfig{Quality: 500, ScaleFactor: 2.0, FrameDelay: -1})

	session.mu.Lock()
	cfg := session.config
	session.mu.Unlock()

	want := DefaultStreamConfig()
	if cfg.Quality != want.Quality || cfg.ScaleFactor != want.ScaleFactor || cfg.FrameDelay != want.FrameDelay {
		t.Errorf("UpdateConfig applied an out-of-range value: got %+v, want unchanged %+v", cfg, want)
	}

	session.UpdateConfig(StreamConfig{Quality: 75, ScaleFactor: 0.5, FrameDelay: 100 * time.Millisecond})
	session.mu.Lock()
	cfg = session.config
	session.mu.Unlock()
	if cfg.Quality != 75 || cfg.ScaleFactor != 0.5 || cfg.FrameDelay != 100*time.Millisecond {
		t.Errorf("UpdateConfig did not apply in-range values: got %+v", cfg)
	}
}
