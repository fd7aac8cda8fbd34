package supervisor

import (
	"net"
	"testing"
)

func TestProbeFalseWhenNothingListening(t *testing.T) {
	s := New("127.0.0.1:1")
	if s.probe() {
		t.Fatal("expected probe to fail against a closed port")
	}
}

func TestProbeTrueWhenListening(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to open listener: %v", err)
	}
	defer ln.Close()

	s := New(ln.Addr().String())
	if !s.probe() {
		t.Fatal("expected probe to succeed against a live listener")
	}
}

func TestCheckUpdatesRunningFromProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to open listener: %v", err)
	}

	s := New(ln.Addr().String())
	if !s.Check() {
		t.Fatal("expected Check to report running while the listener is open")
	}

	ln.Close()
	if s.Check() {
		t.Fatal("expected Check to report not running after the listener closed")
	}
}

func TestRunningReflectsLastCheckWithoutReprobing(t *testing.T) {
	s := New("127.0.0.1:1")
	if s.Running() {
		t.Fatal("expected a fresh Supervisor to report not running")
	}
	s.setRunning(true)
	if !s.Running() {
		t.Fatal("expected Running to reflect the flag set by setRunning")
	}
}

func TestStopWithNoProcessIsANoOp(t *testing.T) {
	s := New("127.0.0.1:1")
	s.setRunning(true)
	if err := s.Stop(); err != nil {
		t.Fatalf("unexpected error stopping a Supervisor with no child: %v", err)
	}
	if s.Running() {
		t.Fatal("expected Stop to clear the running flag even with no child process")
	}
}

func TestStartFailsWhenBackendExecutableIsMissing(t *testing.T) {
	s := New("127.0.0.1:1")
	if _, err := s.locateExecutable(); err == nil {
		t.Fatal("expected locateExecutable to fail when no backend binary is packaged or present in a dev layout")
	}
}
