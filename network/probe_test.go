package network

import (
	"errors"
	"net"
	"testing"
)

type fakeConn struct {
	net.Conn
	local net.Addr
}

func (c *fakeConn) LocalAddr() net.Addr { return c.local }
func (c *fakeConn) Close() error        { return nil }

func offlineProber() *Prober {
	fail := errors.New("network is unreachable")
	return &Prober{
		dial:      func(string, string) (net.Conn, error) { return nil, fail },
		hostname:  func() (string, error) { return "", fail },
		lookupIP:  func(string) ([]net.IP, error) { return nil, fail },
		ifaceAddr: func() ([]net.Addr, error) { return nil, fail },
	}
}

func TestSelectIPv6(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"skips loopback and link-local", []string{"::1", "fe80::1", "2001:db8::5"}, "2001:db8::5"},
		{"only loopback and link-local", []string{"::1", "fe80::1", "FE80::abcd"}, ""},
		{"strips zone index", []string{"2001:db8::7%eth0"}, "2001:db8::7"},
		{"link-local with zone", []string{"fe80::1%en0", "2001:db8::9"}, "2001:db8::9"},
		{"first global wins", []string{"2001:db8::1", "2001:db8::2"}, "2001:db8::1"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectIPv6(tt.candidates); got != tt.want {
				t.Errorf("SelectIPv6(%v) = %q, want %q", tt.candidates, got, tt.want)
			}
		})
	}
}

func TestDetectOffline(t *testing.T) {
	addrs := offlineProber().Detect()
	if addrs.IPv4 != "" || addrs.IPv6 != "" {
		t.Errorf("expected nothing on an offline host, got %+v", addrs)
	}
}

func TestDetectRecoversFromPanics(t *testing.T) {
	p := &Prober{
		dial:     func(string, string) (net.Conn, error) { panic("boom") },
		hostname: func() (string, error) { panic("boom") },
	}

	if addrs := p.Detect(); addrs != (Addresses{}) {
		t.Errorf("expected empty addresses, got %+v", addrs)
	}
}

func TestIPv4FromLocalAddr(t *testing.T) {
	p := offlineProber()
	var gotNetwork, gotAddress string
	p.dial = func(network, address string) (net.Conn, error) {
		gotNetwork, gotAddress = network, address
		return &fakeConn{local: &net.UDPAddr{IP: net.ParseIP("192.0.2.10"), Port: 50000}}, nil
	}

	if ip := p.IPv4(); ip != "192.0.2.10" {
		t.Errorf("IPv4() = %q, want 192.0.2.10", ip)
	}
	if gotNetwork != "udp4" || gotAddress != probeTarget {
		t.Errorf("dialed %s %s", gotNetwork, gotAddress)
	}
}

func TestIPv4UnspecifiedIsNotFound(t *testing.T) {
	p := offlineProber()
	p.dial = func(string, string) (net.Conn, error) {
		return &fakeConn{local: &net.UDPAddr{IP: net.IPv4zero}}, nil
	}

	if ip := p.IPv4(); ip != "" {
		t.Errorf("IPv4() = %q, want empty", ip)
	}
}

func TestIPv6FromHostname(t *testing.T) {
	p := offlineProber()
	p.hostname = func() (string, error) { return "nas", nil }
	p.lookupIP = func(host string) ([]net.IP, error) {
		if host != "nas" {
			t.Errorf("looked up %q", host)
		}
		return []net.IP{
			net.ParseIP("192.0.2.1"),
			net.ParseIP("::1"),
			net.ParseIP("fe80::1"),
			net.ParseIP("2001:db8::5"),
		}, nil
	}

	if ip := p.IPv6(); ip != "2001:db8::5" {
		t.Errorf("IPv6() = %q, want 2001:db8::5", ip)
	}
}

func TestIPv6FallsBackToInterfaces(t *testing.T) {
	p := offlineProber()
	p.ifaceAddr = func() ([]net.Addr, error) {
		return []net.Addr{
			&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)},
			&net.IPNet{IP: net.ParseIP("fe80::2"), Mask: net.CIDRMask(64, 128)},
			&net.IPNet{IP: net.ParseIP("2001:db8::42"), Mask: net.CIDRMask(64, 128)},
		}, nil
	}

	if ip := p.IPv6(); ip != "2001:db8::42" {
		t.Errorf("IPv6() = %q, want 2001:db8::42", ip)
	}
}
