package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/buildeasy/webverse/internal/config"
)

// RequestLogger tags every request with a generated request ID and logs the
// method, path, and duration once the handler returns.
func RequestLogger(log hclog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		log.Info("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}

// AllowedHosts rejects requests whose Host header is not in the configured
// allow-list. The restriction is lifted entirely when debug mode is on.
func AllowedHosts(cfg *config.Config, log hclog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.Debug {
			next.ServeHTTP(w, r)
			return
		}

		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		for _, allowed := range cfg.AllowedHosts {
			if hostMatches(host, allowed) {
				next.ServeHTTP(w, r)
				return
			}
		}

		log.Warn("request rejected by host restriction", "host", r.Host)
		http.Error(w, "Invalid host header", http.StatusBadRequest)
	})
}

// hostMatches supports exact entries and "*.domain" wildcard entries.
func hostMatches(host, allowed string) bool {
	if suffix, ok := strings.CutPrefix(allowed, "*"); ok {
		return strings.HasSuffix(host, suffix)
	}
	return host == allowed
}
