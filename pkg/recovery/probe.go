package recovery

import (
	"net"
	"os"
	"time"
)

// Prober answers whether a network host or mapped drive is currently
// reachable. Injectable so tests never touch the network.
type Prober interface {
	// HostReachable probes a server by name within the timeout
	HostReachable(host string, timeout time.Duration) bool

	// PathReachable checks a mapped-drive path with a cheap existence test
	PathReachable(path string) bool
}

// DialProber probes hosts with a bounded TCP dial against the SMB
// port, the closest portable equivalent of pinging a file server.
type DialProber struct {
	// Port to dial, defaults to 445
	Port string
}

// HostReachable dials host:port within the timeout.
func (p DialProber) HostReachable(host string, timeout time.Duration) bool {
	if host == "" {
		return false
	}
	port := p.Port
	if port == "" {
		port = "445"
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// PathReachable stats the path.
func (p DialProber) PathReachable(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
