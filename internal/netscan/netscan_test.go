package netscan

import (
	"net"
	"testing"
	"time"
)

func TestPingHostLoopback(t *testing.T) {
	result := PingHost("127.0.0.1", 500*time.Millisecond)
	if !result.Alive {
		t.Error("expected loopback to answer as alive via icmp or tcp fallback")
	}
}

func TestPingHostUnroutableAddressIsNotAlive(t *testing.T) {
	// TEST-NET-1 address documented by RFC 5737, never routed.
	result := PingHost("192.0.2.1", 200*time.Millisecond)
	if result.Alive {
		t.Error("expected unroutable test address to be reported as not alive")
	}
}

func TestSubnetHost(t *testing.T) {
	base := net.ParseIP("10.20.30.40").To4()
	got := subnetHost(base, 5)
	want := "10.20.30.5"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestScanSubnetInvalidLocalIP(t *testing.T) {
	hosts := ScanSubnet("not-an-ip", 0)
	if hosts != nil {
		t.Errorf("expected nil result for invalid local ip, got %v", hosts)
	}
}
