package pkg

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies lists the reverse proxies (nginx) allowed to report the client IP
// through the X-Real-Ip and X-Forwarded-For headers. Entries are IPs or CIDRs.
type TrustedProxies struct {
	nets []*net.IPNet
}

func NewTrustedProxies(entries []string) (*TrustedProxies, error) {
	proxies := &TrustedProxies{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q is not an ip or cidr", entry)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			proxies.nets = append(proxies.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}

		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		proxies.nets = append(proxies.nets, ipNet)
	}
	return proxies, nil
}

func (p *TrustedProxies) contains(ip net.IP) bool {
	if p == nil {
		return false
	}
	for _, ipNet := range p.nets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// ReadUserIP returns the client IP. The forwarding headers are honored only when the
// request comes from one of the trusted proxies, otherwise the peer address is used.
func ReadUserIP(r *http.Request, proxies *TrustedProxies) (string, error) {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	peerIP := net.ParseIP(peer)
	if peerIP == nil {
		return "", fmt.Errorf("ip addr %s is invalid", peer)
	}

	if !proxies.contains(peerIP) {
		return peer, nil
	}

	ipAddr := strings.TrimSpace(r.Header.Get("X-Real-Ip"))
	if ipAddr == "" {
		// first entry is the original client
		ipAddr = strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0])
	}
	if ipAddr == "" {
		return peer, nil
	}

	if ip := net.ParseIP(ipAddr); ip == nil {
		return "", fmt.Errorf("forwarded ip addr %s is invalid", ipAddr)
	}

	return ipAddr, nil
}
