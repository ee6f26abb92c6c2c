package network

import (
	"net"
	"os"
	"strings"
	"time"
)

// probeTarget is only used to pick a route; no packet is sent over UDP
const probeTarget = "8.8.8.8:80"

// Addresses holds the detected addresses; an empty string means not found
type Addresses struct {
	IPv4 string
	IPv6 string
}

// Prober discovers the host's outward-facing addresses. It never fails:
// every error is reported as a missing address.
type Prober struct {
	dial      func(network, address string) (net.Conn, error)
	hostname  func() (string, error)
	lookupIP  func(host string) ([]net.IP, error)
	ifaceAddr func() ([]net.Addr, error)
}

// NewProber creates a prober backed by the host network stack
func NewProber() *Prober {
	dialer := &net.Dialer{Timeout: 2 * time.Second}
	return &Prober{
		dial:      dialer.Dial,
		hostname:  os.Hostname,
		lookupIP:  net.LookupIP,
		ifaceAddr: net.InterfaceAddrs,
	}
}

// DetectIPs runs a single best-effort pass over both families
func DetectIPs() Addresses {
	return NewProber().Detect()
}

// Detect returns the IPv4 and IPv6 addresses that were found
func (p *Prober) Detect() Addresses {
	return Addresses{
		IPv4: p.IPv4(),
		IPv6: p.IPv6(),
	}
}

// IPv4 returns the local address of a UDP socket connected to a public host
func (p *Prober) IPv4() (ip string) {
	defer func() {
		if recover() != nil {
			ip = ""
		}
	}()

	conn, err := p.dial("udp4", probeTarget)
	if err != nil {
		return ""
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil || addr.IP.IsUnspecified() {
		return ""
	}
	return addr.IP.String()
}

// IPv6 resolves the hostname and falls back to interface addresses,
// returning the first global candidate
func (p *Prober) IPv6() (ip string) {
	defer func() {
		if recover() != nil {
			ip = ""
		}
	}()

	if ip := SelectIPv6(p.hostnameCandidates()); ip != "" {
		return ip
	}
	return SelectIPv6(p.interfaceCandidates())
}

func (p *Prober) hostnameCandidates() []string {
	if p.hostname == nil || p.lookupIP == nil {
		return nil
	}
	host, err := p.hostname()
	if err != nil || host == "" {
		return nil
	}
	ips, err := p.lookupIP(host)
	if err != nil {
		return nil
	}

	var candidates []string
	for _, ip := range ips {
		if ip.To4() == nil && ip.To16() != nil {
			candidates = append(candidates, ip.String())
		}
	}
	return candidates
}

func (p *Prober) interfaceCandidates() []string {
	if p.ifaceAddr == nil {
		return nil
	}
	addrs, err := p.ifaceAddr()
	if err != nil {
		return nil
	}

	var candidates []string
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ipNet.IP.To4() == nil && ipNet.IP.To16() != nil {
			candidates = append(candidates, ipNet.IP.String())
		}
	}
	return candidates
}

// SelectIPv6 picks the first candidate that is neither loopback nor
// link-local, with any zone index removed
func SelectIPv6(candidates []string) string {
	for _, addr := range candidates {
		if i := strings.Index(addr, "%"); i >= 0 {
			addr = addr[:i]
		}
		if addr == "" || addr == "::1" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(addr), "fe80") {
			continue
		}
		return addr
	}
	return ""
}
