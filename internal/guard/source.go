package guard

import (
	"net"
	"net/http"
	"strings"
)

// SourceKey resolves a stable per-caller identifier for rate limiting.
// Forwarded headers win over the socket address since the service normally
// sits behind a proxy.
func SourceKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}
