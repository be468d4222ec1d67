// Package network extracts client addresses for throttling and logs.
package network

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address of the client that sent r. Behind a reverse
// proxy the first valid entry of X-Forwarded-For wins, then X-Real-IP;
// otherwise RemoteAddr is used without its port. Header values that do not
// parse as an IP are ignored so they cannot pick arbitrary throttle keys.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := parseIP(host); ip != "" {
		return ip
	}
	return host
}

// parseIP returns the canonical form of s, or "" if s is not an IP.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
