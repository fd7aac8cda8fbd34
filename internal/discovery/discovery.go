// Package discovery implements the UDP beacon protocol that lets
// classroom nodes find each other on the LAN without configuration: an
// advertiser periodically broadcasts its presence, and a seeker
// solicits and collects those beacons for a bounded window.
package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	// Port is the well-known UDP port used for both beacons and
	// solicitations.
	Port = 5959

	// Magic is the fixed ASCII tag that prefixes every beacon. It must
	// stay stable across builds that need to interoperate.
	Magic = "SMARTLAB_SERVER"

	// Probe is the fixed ASCII solicitation a seeker broadcasts to
	// prompt advertisers to beacon immediately (advertisers still beacon
	// on their own timer regardless).
	Probe = "SMARTLAB_DISCOVER"

	// DefaultRemoteControlPort is the port field value a beacon parses to
	// when its sender omitted it. It is the remote-control TCP port's
	// default, not the UDP discovery port: a beacon always advertises the
	// sender's remote-control listener, never the discovery socket.
	DefaultRemoteControlPort = 5960

	limitedBroadcast = "255.255.255.255"
)

// Beacon is a single advertiser's presence announcement.
type Beacon struct {
	IP   string
	Port int
}

// Encode renders a beacon as the wire format MAGIC|ipv4|port.
func (b Beacon) Encode() []byte {
	return []byte(fmt.Sprintf("%s|%s|%d", Magic, b.IP, b.Port))
}

// ParseBeacon parses a received UDP datagram into a Beacon. It returns
// false if the datagram's prefix does not match Magic (invariant I3), or
// if the IP field after it is missing or empty. A missing or invalid
// port field falls back to DefaultRemoteControlPort.
func ParseBeacon(data []byte) (Beacon, bool) {
	s := string(data)
	if !strings.HasPrefix(s, Magic+"|") {
		return Beacon{}, false
	}
	rest := strings.TrimPrefix(s, Magic+"|")
	fields := strings.Split(rest, "|")
	if len(fields) < 1 || fields[0] == "" {
		return Beacon{}, false
	}

	b := Beacon{IP: fields[0], Port: DefaultRemoteControlPort}
	if len(fields) >= 2 {
		if p, err := strconv.Atoi(fields[1]); err == nil && p >= 10 && p <= 65535 {
			b.Port = p
		}
	}
	return b, true
}

// subnetBroadcast derives the subnet-directed broadcast address a.b.c.255
// from a local IPv4 address.
func subnetBroadcast(ip net.IP) string {
	v4 := ip.To4()
	if v4 == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d.255", v4[0], v4[1], v4[2])
}

// LocalIPv4 returns the first non-loopback IPv4 address bound to this
// host, or "127.0.0.1" if none is found.
func LocalIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "127.0.0.1"
}
