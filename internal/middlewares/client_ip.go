package middlewares

import (
	"net"
	"net/http"
	"strings"
)

// clientIPHeaders are consulted in order. X-Forwarded-For contributes only
// its first (client-most) entry.
var clientIPHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

// ClientIPMiddleware rewrites RemoteAddr to the real client address taken
// from proxy headers, keeping the "IP:port" form so later handlers and the
// request logger can split it.
func ClientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := extractClientIP(r); ip != "" {
			port := "0"
			if _, p, err := net.SplitHostPort(r.RemoteAddr); err == nil && p != "" {
				port = p
			}
			r.RemoteAddr = net.JoinHostPort(ip, port)
		}

		next.ServeHTTP(w, r)
	})
}

func extractClientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		if header == "X-Forwarded-For" {
			value, _, _ = strings.Cut(value, ",")
		}

		if ip := parseIP(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	return parseIP(host)
}

func parseIP(s string) string {
	if parsed := net.ParseIP(strings.TrimSpace(s)); parsed != nil {
		return parsed.String()
	}
	return ""
}
