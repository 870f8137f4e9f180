// server/redirect.go
package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// httpRedirectHandler redirects any HTTP request to HTTPS on the same host
// and path. Hosts and request targets that could inject headers or point
// elsewhere are rejected.
func httpRedirectHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqURI := r.URL.RequestURI()
		if !isValidHost(r.Host) || !isValidRequestURI(reqURI) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "https://"+r.Host+reqURI, http.StatusMovedPermanently)
	})
}

// isValidRequestURI rejects control characters other than tab.
func isValidRequestURI(uri string) bool {
	for _, c := range uri {
		if (c < 0x20 && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}

// isValidHost accepts a host, an optional port in range, and bracketed
// IPv6 literals with an optional zone.
func isValidHost(host string) bool {
	if host == "" || strings.Contains(host, "://") || strings.HasPrefix(host, "/") {
		return false
	}

	name := host
	if h, port, err := net.SplitHostPort(host); err == nil {
		name = h
		if port != "" {
			n, err := strconv.Atoi(port)
			if err != nil || n <= 0 || n > 65535 {
				return false
			}
		}
	}
	if name == "" {
		return false
	}

	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		ip := name[1 : len(name)-1]
		if i := strings.Index(ip, "%"); i != -1 {
			ip = ip[:i]
		}
		if net.ParseIP(ip) == nil {
			return false
		}
	}

	for _, c := range name {
		if c <= 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}
