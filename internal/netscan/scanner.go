package netscan

import (
	"bytes"
	"context"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/smartlab-classroom/peerfabric/internal/workerpool"
)

// scanPorts are the ports scan_network probes on every candidate host,
// in the order the original classroom tool checks them.
var scanPorts = []int{80, 443, 22, 445, 139, 3389, 8080}

const (
	scanPortTimeout    = 100 * time.Millisecond
	defaultConcurrency = 50
	scanDrainTimeout   = 30 * time.Second
)

// Host is a discovered host on the scanned subnet.
type Host struct {
	IP        string
	OpenPorts []int
}

// ScanSubnet sweeps the /24 containing localIP, probing scanPorts on
// every host address (octets 1..254) through a bounded worker pool of
// concurrency width. Hosts with at least one open port are reported,
// sorted numerically by IPv4 address.
func ScanSubnet(localIP string, concurrency int) []Host {
	base := net.ParseIP(localIP).To4()
	if base == nil {
		log.Error("cannot derive subnet from invalid local IP", "ip", localIP)
		return nil
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	targets := make([]string, 0, 254)
	for octet := 1; octet <= 254; octet++ {
		targets = append(targets, subnetHost(base, octet))
	}

	var mu sync.Mutex
	hosts := make([]Host, 0, 16)

	pool := workerpool.New(concurrency, len(targets))
	for _, target := range targets {
		ip := target
		pool.Submit(func() {
			open := probeHost(ip)
			if len(open) == 0 {
				return
			}
			mu.Lock()
			hosts = append(hosts, Host{IP: ip, OpenPorts: open})
			mu.Unlock()
		})
	}

	pool.StopAccepting()
	ctx, cancel := context.WithTimeout(context.Background(), scanDrainTimeout)
	defer cancel()
	pool.Drain(ctx)

	sort.Slice(hosts, func(i, j int) bool {
		return bytes.Compare(net.ParseIP(hosts[i].IP).To4(), net.ParseIP(hosts[j].IP).To4()) < 0
	})
	return hosts
}

func probeHost(ip string) []int {
	var open []int
	for _, port := range scanPorts {
		addr := net.JoinHostPort(ip, strconv.Itoa(port))
		conn, err := net.DialTimeout("tcp", addr, scanPortTimeout)
		if err != nil {
			continue
		}
		conn.Close()
		open = append(open, port)
	}
	return open
}

func subnetHost(base net.IP, lastOctet int) string {
	ip := make(net.IP, 4)
	copy(ip, base)
	ip[3] = byte(lastOctet)
	return ip.String()
}
