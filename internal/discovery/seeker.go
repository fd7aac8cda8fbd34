package discovery

import (
	"net"
	"sort"
	"time"

	"github.com/smartlab-classroom/peerfabric/internal/logging"
)

var seekerLog = logging.L("discovery.seeker")

// defaultSeekTimeout is the seek window used when Seek is called with
// timeout<=0. Remote-peer discovery uses a shorter, explicitly-passed
// 3s window instead (§4.1); this 5s default covers general server
// discovery.
const defaultSeekTimeout = 5 * time.Second

// Peer is a discovered node, deduplicated by IP.
type Peer struct {
	IP   string
	Port int
}

// Seek broadcasts a solicitation and collects beacons for timeout,
// returning the set of distinct peers heard (self-IP excluded per
// invariant I4). An empty result is not an error: a classroom segment
// with no other nodes yet running is a normal state, not a failure.
func Seek(timeout time.Duration) ([]Peer, error) {
	if timeout <= 0 {
		timeout = defaultSeekTimeout
	}

	conn, err := listenFallback()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	selfIP := LocalIPv4()
	solicit(selfIP)

	deadline := time.Now().Add(timeout)
	seen := make(map[string]Peer)
	buf := make([]byte, 512)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		conn.SetReadDeadline(time.Now().Add(remaining))

		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			continue
		}

		beacon, ok := ParseBeacon(buf[:n])
		if !ok {
			continue
		}
		if beacon.IP == selfIP {
			continue
		}
		if _, dup := seen[beacon.IP]; !dup {
			seen[beacon.IP] = Peer{IP: beacon.IP, Port: beacon.Port}
		}
	}

	peers := make([]Peer, 0, len(seen))
	for _, p := range seen {
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].IP < peers[j].IP })
	return peers, nil
}

// listenFallback binds Port for listening, falling back to an ephemeral
// port if the well-known port is already taken by another process on
// this host (e.g. a Teacher node also running a Seeker).
func listenFallback() (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: Port})
	if err == nil {
		return conn, nil
	}

	seekerLog.Debug("seek listen on well-known port failed, falling back to ephemeral", logging.KeyError, err)
	return net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
}

func solicit(selfIP string) {
	payload := []byte(Probe)
	destinations := []string{limitedBroadcast}
	if sb := subnetBroadcast(net.ParseIP(selfIP)); sb != "" {
		destinations = append(destinations, sb)
	}
	for _, dest := range destinations {
		if err := sendDatagram(dest, Port, payload); err != nil {
			seekerLog.Debug("solicitation send failed", logging.KeyError, err, "dest", dest)
		}
	}
}
