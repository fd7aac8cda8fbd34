package server

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/smartlab-classroom/peerfabric/internal/health"
	"github.com/smartlab-classroom/peerfabric/internal/remote/desktop"
)

func TestStartBindsEphemeralPortAndReportsRunning(t *testing.T) {
	s := New(health.NewMonitor(), desktop.StreamConfig{})
	port, err := s.Start(0)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if port == 0 {
		t.Fatal("expected a nonzero bound port")
	}
	if !s.Running() {
		t.Fatal("expected Running() to be true after Start")
	}
	if s.Port() != port {
		t.Fatalf("Port() = %d, want %d", s.Port(), port)
	}
}

func TestStartIsANoOpWhenAlreadyRunning(t *testing.T) {
	s := New(health.NewMonitor(), desktop.StreamConfig{})
	first, err := s.Start(0)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	second, err := s.Start(12345)
	if err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if second != first {
		t.Fatalf("expected the second Start to return the already-bound port %d, got %d", first, second)
	}
}

func TestStopClearsRunningAndPort(t *testing.T) {
	s := New(health.NewMonitor(), desktop.StreamConfig{})
	if _, err := s.Start(0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.Running() {
		t.Fatal("expected Running() to be false after Stop")
	}
	if s.Port() != 0 {
		t.Fatalf("Port() after Stop = %d, want 0", s.Port())
	}
}

func TestStopWithoutStartIsANoOp(t *testing.T) {
	s := New(health.NewMonitor(), desktop.StreamConfig{})
	if err := s.Stop(); err != nil {
		t.Fatalf("expected stopping a never-started server to be a no-op, got: %v", err)
	}
}

func TestRestartAfterStopRebindsSuccessfully(t *testing.T) {
	s := New(health.NewMonitor(), desktop.StreamConfig{})
	first, err := s.Start(0)
	if err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	second, err := s.Start(first)
	if err != nil {
		t.Fatalf("rebind on the freed port failed: %v", err)
	}
	defer s.Stop()
	if second != first {
		t.Fatalf("expected to rebind the same port %d, got %d", first, second)
	}
}

func TestListenerAcceptsTCPConnections(t *testing.T) {
	s := New(health.NewMonitor(), desktop.StreamConfig{})
	port, err := s.Start(0)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), time.Second)
	if err != nil {
		t.Fatalf("failed to dial the bound listener: %v", err)
	}
	conn.Close()
}
