// Package netscan implements the classroom subnet sweep used by
// scan_network and ping_host: a worker-pool TCP-probe scan of a /24 and a
// single-host ICMP-then-TCP liveness check.
package netscan

import "github.com/smartlab-classroom/peerfabric/internal/logging"

var log = logging.L("netscan")
