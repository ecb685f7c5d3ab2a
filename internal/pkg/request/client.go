package request

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
)

type ctxKey struct{}

// ProxyResolver derives the client address of a request. X-Forwarded-For is
// only read when the socket peer is a trusted proxy.
type ProxyResolver struct {
	trusted []*net.IPNet
}

// NewProxyResolver parses proxies given as CIDRs or bare addresses.
func NewProxyResolver(proxies []string) (*ProxyResolver, error) {
	res := &ProxyResolver{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			p = fmt.Sprintf("%s/%d", ip.String(), bits)
		}
		_, network, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		res.trusted = append(res.trusted, network)
	}
	return res, nil
}

func (res *ProxyResolver) isTrusted(ip net.IP) bool {
	for _, n := range res.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Resolve walks X-Forwarded-For from the nearest hop and returns the first
// address that is not a trusted proxy. Untrusted peers are returned as is.
func (res *ProxyResolver) Resolve(r *http.Request) string {
	peer := PeerIP(r)
	ip := net.ParseIP(peer)
	if ip == nil || !res.isTrusted(ip) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := net.ParseIP(strings.TrimSpace(hops[i]))
		if hop == nil {
			break
		}
		if !res.isTrusted(hop) {
			return hop.String()
		}
	}
	return peer
}

// Middleware stores the resolved client address for ClientIP.
func (res *ProxyResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxKey{}, res.Resolve(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the address stored by ProxyResolver.Middleware, or the
// socket peer when the request did not pass through it.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(ctxKey{}).(string); ok && ip != "" {
		return ip
	}
	return PeerIP(r)
}

// PeerIP is the host part of the socket address.
func PeerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
