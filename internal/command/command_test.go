package command

import (
	"testing"

	"github.com/smartlab-classroom/peerfabric/internal/config"
	"github.com/smartlab-classroom/peerfabric/internal/health"
	"github.com/smartlab-classroom/peerfabric/internal/netscan"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := config.Default()
	cfg.PingTimeoutMs = 200
	return New(cfg, health.NewMonitor())
}

func TestSetAppModeRejectsUnknownMode(t *testing.T) {
	r := newTestRegistry(t)
	result := r.SetAppMode("Admin")
	if result.Success {
		t.Fatal("expected failure for an unrecognized mode")
	}
}

func TestWakeOnLANRejectsInvalidMAC(t *testing.T) {
	r := newTestRegistry(t)
	result := r.WakeOnLAN("not-a-mac", "")
	if result.Success {
		t.Fatal("expected failure for an invalid MAC address")
	}
}

func TestGetRemoteControlURLUsesConfiguredPortByDefault(t *testing.T) {
	r := newTestRegistry(t)
	result := r.GetRemoteControlURL("10.0.0.5", 0)
	url, ok := result.Data.(string)
	if !ok || url != "ws://10.0.0.5:5960/" {
		t.Errorf("got %v, want ws://10.0.0.5:5960/", result.Data)
	}
}

func TestCheckComputerStatusUnroutableIsNotAlive(t *testing.T) {
	r := newTestRegistry(t)
	result := r.CheckComputerStatus("192.0.2.1")
	if !result.Success {
		t.Fatal("a dead host is a normal, successful result, not a failure")
	}
	if ping, isPing := result.Data.(netscan.PingResult); !isPing || ping.Alive {
		t.Fatalf("expected a not-alive ping result, got %+v", result.Data)
	}
}

func TestRemoteShutdownIsExplicitlyUnsupported(t *testing.T) {
	r := newTestRegistry(t)
	if r.RemoteShutdown("10.0.0.5", "").Success {
		t.Fatal("expected remote shutdown to fail without a control channel")
	}
}

func TestStartStopRemoteServerRebindsSamePort(t *testing.T) {
	r := newTestRegistry(t)

	started := r.StartRemoteServer(0)
	if !started.Success {
		t.Fatalf("start failed: %s", started.Message)
	}
	port := started.Data.(map[string]int)["port"]

	if stopped := r.StopRemoteServer(); !stopped.Success {
		t.Fatalf("stop failed: %s", stopped.Message)
	}

	restarted := r.StartRemoteServer(port)
	if !restarted.Success {
		t.Fatalf("rebind on the same port failed: %s", restarted.Message)
	}
	r.StopRemoteServer()
}
