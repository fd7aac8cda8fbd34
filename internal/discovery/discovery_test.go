package discovery

import (
	"net"
	"testing"
)

func TestBeaconEncodeRoundTrip(t *testing.T) {
	b := Beacon{IP: "192.168.1.42", Port: 7000}
	parsed, ok := ParseBeacon(b.Encode())
	if !ok {
		t.Fatal("expected beacon to parse")
	}
	if parsed.IP != b.IP || parsed.Port != b.Port {
		t.Errorf("round trip mismatch: got %+v, want %+v", parsed, b)
	}
}

func TestParseBeaconRejectsWrongMagic(t *testing.T) {
	_, ok := ParseBeacon([]byte("NOT_THE_MAGIC|192.168.1.1|7000"))
	if ok {
		t.Error("expected parse failure for mismatched magic")
	}
}

func TestParseBeaconRejectsEmptyIP(t *testing.T) {
	_, ok := ParseBeacon([]byte(Magic + "|"))
	if ok {
		t.Error("expected parse failure for empty ip field")
	}
}

func TestParseBeaconDefaultsPortWhenOmitted(t *testing.T) {
	parsed, ok := ParseBeacon([]byte(Magic + "|10.0.0.5"))
	if !ok {
		t.Fatal("expected beacon with no port field to parse")
	}
	if parsed.Port != DefaultRemoteControlPort {
		t.Errorf("expected default port %d, got %d", DefaultRemoteControlPort, parsed.Port)
	}
}

func TestParseBeaconIgnoresGarbagePort(t *testing.T) {
	parsed, ok := ParseBeacon([]byte(Magic + "|10.0.0.5|not-a-port"))
	if !ok {
		t.Fatal("expected beacon to still parse with a malformed port field")
	}
	if parsed.Port != DefaultRemoteControlPort {
		t.Errorf("expected fallback to default port %d, got %d", DefaultRemoteControlPort, parsed.Port)
	}
}

func TestSubnetBroadcast(t *testing.T) {
	got := subnetBroadcast(mustParseIP(t, "10.1.2.3"))
	want := "10.1.2.255"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestAdvertiserStartStopIdempotent(t *testing.T) {
	a := NewAdvertiser(9000, 0)

	a.Start()
	a.Start() // idempotent: should not spawn a second loop or deadlock
	if !a.Running() {
		t.Fatal("expected advertiser to report running after Start")
	}

	a.Stop()
	a.Stop() // idempotent: should not block or panic
	if a.Running() {
		t.Fatal("expected advertiser to report stopped after Stop")
	}
}

func mustParseIP(t *testing.T, s string) net.IP {
	t.Helper()
	ip := net.ParseIP(s)
	if ip == nil {
		t.Fatalf("invalid test IP literal %q", s)
	}
	return ip
}
