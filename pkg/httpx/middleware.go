package httpx

import (
	"net"
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler with cross-cutting behavior such as
// logging, rate limiting, or authentication.
type Middleware func(http.Handler) http.Handler

// Chain wraps a handler with the given middlewares. The first middleware
// listed becomes the outermost wrapper, so it sees the request first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// GetRemoteIP extracts the client address from the request. It honors
// X-Forwarded-For (first hop) and X-Real-IP for proxied requests before
// falling back to the connection's remote address.
func GetRemoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
