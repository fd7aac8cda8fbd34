package netscan

import (
	"math/rand"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/smartlab-classroom/peerfabric/internal/logging"
)

var pingSequence uint32

// tcpPingPorts are the ports ping_host probes as a TCP-connect fallback
// when ICMP is unavailable or unanswered, in the original's order.
var tcpPingPorts = []int{80, 443, 22, 445, 139, 3389, 8080, 53}

const tcpPingTimeout = 500 * time.Millisecond

// PingResult reports the outcome of a ping_host probe.
type PingResult struct {
	Host      string
	Alive     bool
	Method    string // "icmp" or "tcp"
	LatencyMs int64
}

// PingHost pings a single host: ICMP echo first, falling back to a
// TCP-connect probe across tcpPingPorts if ICMP is unavailable (no raw
// socket permission) or unanswered within timeout.
func PingHost(host string, timeout time.Duration) PingResult {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	ip := net.ParseIP(host)
	if ip == nil {
		resolved, err := net.ResolveIPAddr("ip4", host)
		if err != nil {
			return PingResult{Host: host, Alive: false}
		}
		ip = resolved.IP
	}

	if conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0"); err == nil {
		defer conn.Close()
		start := time.Now()
		if pingWithConn(conn, ip, timeout) {
			return PingResult{Host: host, Alive: true, Method: "icmp", LatencyMs: time.Since(start).Milliseconds()}
		}
	} else {
		log.Debug("icmp socket unavailable, falling back to tcp ping", logging.KeyError, err)
	}

	return tcpPing(host, ip)
}

func tcpPing(host string, ip net.IP) PingResult {
	for _, port := range tcpPingPorts {
		start := time.Now()
		addr := net.JoinHostPort(ip.String(), strconv.Itoa(port))
		conn, err := net.DialTimeout("tcp", addr, tcpPingTimeout)
		if err != nil {
			continue
		}
		conn.Close()
		return PingResult{Host: host, Alive: true, Method: "tcp", LatencyMs: time.Since(start).Milliseconds()}
	}
	return PingResult{Host: host, Alive: false}
}

// PingSweep performs an ICMP ping sweep over the target IPs, sharing one
// ICMP socket per worker goroutine instead of one per target.
func PingSweep(targets []net.IP, timeout time.Duration, workers int) []net.IP {
	if len(targets) == 0 {
		return nil
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if workers <= 0 {
		workers = 128
	}

	jobs := make(chan net.IP)
	results := make(chan net.IP, len(targets))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
			if err != nil {
				log.Error("ICMP listen failed for worker", logging.KeyError, err)
				return
			}
			defer conn.Close()
			for ip := range jobs {
				if pingWithConn(conn, ip, timeout) {
					results <- ip
				}
			}
		}()
	}

	for _, target := range targets {
		jobs <- target
	}
	close(jobs)

	wg.Wait()
	close(results)

	alive := make([]net.IP, 0, len(results))
	for ip := range results {
		alive = append(alive, ip)
	}
	return alive
}

// pingWithConn pings a single target using a shared ICMP connection.
func pingWithConn(conn *icmp.PacketConn, ip net.IP, timeout time.Duration) bool {
	ip = ip.To4()
	if ip == nil {
		return false
	}

	seq := int(atomic.AddUint32(&pingSequence, 1))
	id := os.Getpid() & 0xffff
	message := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte{0x53, 0x4c, 0x41, byte(rand.Intn(255))},
		},
	}
	payload, err := message.Marshal(nil)
	if err != nil {
		return false
	}

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return false
	}

	if _, err := conn.WriteTo(payload, &net.IPAddr{IP: ip}); err != nil {
		return false
	}

	buffer := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buffer)
		if err != nil {
			return false
		}
		if peer == nil {
			continue
		}
		parsed, err := icmp.ParseMessage(1, buffer[:n])
		if err != nil {
			return false
		}
		if parsed.Type == ipv4.ICMPTypeEchoReply {
			return true
		}
	}
}
