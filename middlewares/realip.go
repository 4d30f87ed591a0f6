package middlewares

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the originating client IP, preferring proxy headers over
// the socket address: first X-Forwarded-For entry, then X-Real-IP, then
// RemoteAddr. Only trust these headers behind a proxy that sets them.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(ip)
		}
		return strings.TrimSpace(xff)
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
