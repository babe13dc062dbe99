package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// proxySet is the list of networks whose forwarding headers are believed.
type proxySet []netip.Prefix

// parseProxySet accepts CIDRs and bare addresses. Entries that parse as
// neither are logged and dropped.
func parseProxySet(entries []string) proxySet {
	var set proxySet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			set = append(set, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			slog.Warn("realip: skipping trusted proxy entry", "entry", e, "error", err)
			continue
		}
		addr = addr.Unmap()
		set = append(set, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return set
}

func (s proxySet) contains(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientFrom picks the client address out of the forwarding headers of a
// request that arrived from a trusted proxy. X-Real-IP wins. Otherwise the
// X-Forwarded-For chain is walked from the nearest hop outwards and the
// first address outside the proxy set is the client, so entries a client
// prepends itself are never reached. A malformed hop voids the header.
func (s proxySet) clientFrom(h http.Header) (netip.Addr, bool) {
	if v := strings.TrimSpace(h.Get("X-Real-IP")); v != "" {
		addr, err := netip.ParseAddr(v)
		return addr.Unmap(), err == nil
	}

	hops := strings.Split(strings.Join(h.Values("X-Forwarded-For"), ","), ",")
	var client netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			return netip.Addr{}, false
		}
		client = addr.Unmap()
		if !s.contains(client) {
			break
		}
	}
	return client, client.IsValid()
}

// TrustedRealIP replaces RemoteAddr with the client address reported by a
// trusted proxy. Requests whose connection does not come from one of
// trustedCIDRs keep their RemoteAddr, so forged headers cannot dodge the
// per-IP rate limiter.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	proxies := parseProxySet(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(proxies) > 0 && proxies.contains(remoteAddr(r.RemoteAddr)) {
				if client, ok := proxies.clientFrom(r.Header); ok {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the client address of r without the port.
func ClientIP(r *http.Request) string {
	if addr := remoteAddr(r.RemoteAddr); addr.IsValid() {
		return addr.String()
	}
	return r.RemoteAddr
}

// remoteAddr parses "host:port" or a bare address. The zero Addr means
// neither form matched.
func remoteAddr(s string) netip.Addr {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap()
	}
	addr, _ := netip.ParseAddr(s)
	return addr.Unmap()
}
