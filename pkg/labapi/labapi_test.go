package labapi

import (
	"encoding/json"
	"testing"

	"github.com/smartlab-classroom/peerfabric/internal/command"
	"github.com/smartlab-classroom/peerfabric/internal/config"
	"github.com/smartlab-classroom/peerfabric/internal/health"
)

func newTestRegistry(t *testing.T) *command.Registry {
	t.Helper()
	return command.New(config.Default(), health.NewMonitor())
}

func TestDispatchUnknownOperation(t *testing.T) {
	reg := newTestRegistry(t)
	result := Dispatch(reg, Request{Op: "not_a_real_operation"})
	if result.Success {
		t.Fatal("expected failure for an unrecognized operation")
	}
}

func TestDispatchMalformedArgs(t *testing.T) {
	reg := newTestRegistry(t)
	result := Dispatch(reg, Request{Op: "ping_host", Args: json.RawMessage(`{"ip": 5}`)})
	if result.Success {
		t.Fatal("expected failure for malformed arguments")
	}
}

func TestDispatchGetLocalIPAddress(t *testing.T) {
	reg := newTestRegistry(t)
	result := Dispatch(reg, Request{Op: "get_local_ip_address"})
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Message)
	}
	if _, ok := result.Data.(string); !ok {
		t.Errorf("expected string data, got %T", result.Data)
	}
}

func TestDispatchCaptureScreenJPEGOmittedArgsUsesDefaultQuality(t *testing.T) {
	reg := newTestRegistry(t)
	result := Dispatch(reg, Request{Op: "capture_screen_jpeg"})
	// Capture availability is platform-dependent in CI; only the
	// argument-decoding path is under test here.
	if !result.Success {
		t.Logf("capture unavailable in this environment: %s", result.Message)
	}
}

func TestDispatchSetAppModeRejectsUnknownMode(t *testing.T) {
	reg := newTestRegistry(t)
	args, _ := json.Marshal(SetAppModeArgs{Mode: "Admin"})
	result := Dispatch(reg, Request{Op: "set_app_mode", Args: args})
	if result.Success {
		t.Fatal("expected failure before any file write is attempted")
	}
}
