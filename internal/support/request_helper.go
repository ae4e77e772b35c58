package support

import (
	"net"
	"net/http"
	"strings"
)

const unknownClientIP = "unknown"

// ClientIP resolves the originating address of a request.
//
// Order: first X-Forwarded-For element, then X-Real-IP, then the peer address.
// Header values are trusted as sent and are not validated.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}

	return unknownClientIP
}
