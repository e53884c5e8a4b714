package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPResolver extracts client addresses, honouring forwarding headers only
// when the direct peer is one of the trusted proxies.
type IPResolver struct {
	trusted []netip.Prefix
}

// NewIPResolver parses trustedProxies as CIDR ranges or single addresses.
// Entries that parse as neither are ignored.
func NewIPResolver(trustedProxies []string) *IPResolver {
	r := &IPResolver{}
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if p, err := netip.ParsePrefix(entry); err == nil {
			r.trusted = append(r.trusted, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			r.trusted = append(r.trusted, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return r
}

// ClientIP returns the originating client address of r.
func (res *IPResolver) ClientIP(r *http.Request) string {
	peer := remoteAddr(r)

	if res == nil || !res.isTrusted(peer) {
		return peer
	}

	// Leftmost valid entry is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, candidate := range strings.Split(xff, ",") {
			if a, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
				return a.String()
			}
		}
	}

	if a, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return a.String()
	}

	return peer
}

func (res *IPResolver) isTrusted(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range res.trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
