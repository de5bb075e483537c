package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientKeyStrategy extracts a client identifier from a request. It returns
// false when its source is absent.
type ClientKeyStrategy func(r *http.Request) (string, bool)

// DefaultClientKeyStrategies is the lookup order used by ClientKey.
var DefaultClientKeyStrategies = []ClientKeyStrategy{
	ForwardedForFirstHop,
	RealIP,
	RemoteAddr,
}

// ForwardedForFirstHop reads the left-most X-Forwarded-For entry.
func ForwardedForFirstHop(r *http.Request) (string, bool) {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return "", false
	}
	first, _, _ := strings.Cut(xff, ",")
	first = strings.TrimSpace(first)
	return first, first != ""
}

func RealIP(r *http.Request) (string, bool) {
	v := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	return v, v != ""
}

// RemoteAddr is the connection peer address without the port.
func RemoteAddr(r *http.Request) (string, bool) {
	if r.RemoteAddr == "" {
		return "", false
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr, true
	}
	return host, host != ""
}

// ClientKey applies DefaultClientKeyStrategies; the first present value wins.
func ClientKey(r *http.Request) string {
	return clientKey(r, DefaultClientKeyStrategies)
}

func clientKey(r *http.Request, strategies []ClientKeyStrategy) string {
	for _, s := range strategies {
		if k, ok := s(r); ok {
			return k
		}
	}
	return "unknown"
}
