// Package auth guards the SSE transport with basic or API key authentication.
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sha1n/termdex/internal/config"
)

// HealthPath is served without authentication.
const HealthPath = "/health"

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// NewMiddleware creates an authentication middleware based on settings
func NewMiddleware(settings config.AuthSettings) (Middleware, error) {
	switch settings.Type {
	case config.AuthTypeNone, "":
		return func(next http.Handler) http.Handler {
			return next
		}, nil
	case config.AuthTypeBasic:
		if settings.Basic.Username == "" || settings.Basic.Password == "" {
			return nil, fmt.Errorf("basic auth requires non-empty username and password")
		}
		return guard(basicCredentials(settings.Basic), `Basic realm="termdex"`), nil
	case config.AuthTypeAPIKey:
		if len(settings.APIKeys) == 0 {
			return nil, fmt.Errorf("apikey auth requires at least one API key")
		}
		return guard(apiKeyCredentials(settings.APIKeys), ""), nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", settings.Type)
	}
}

// guard rejects requests the check does not accept. The health endpoint is always let through.
func guard(check func(r *http.Request) bool, challenge string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == HealthPath || check(r) {
				next.ServeHTTP(w, r)
				return
			}

			slog.Warn("Rejected unauthenticated request", "path", r.URL.Path, "remote", r.RemoteAddr)
			if challenge != "" {
				w.Header().Set("WWW-Authenticate", challenge)
			}
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		})
	}
}

func basicCredentials(settings config.BasicAuthSettings) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		user, pass, ok := r.BasicAuth()
		userMatch := secureEqual(user, settings.Username)
		passMatch := secureEqual(pass, settings.Password)
		return ok && userMatch && passMatch
	}
}

func apiKeyCredentials(apiKeys []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		key := requestAPIKey(r)
		if key == "" {
			return false
		}
		valid := false
		for _, candidate := range apiKeys {
			// No early exit: every key is compared
			if secureEqual(key, candidate) {
				valid = true
			}
		}
		return valid
	}
}

// requestAPIKey reads the key from "Authorization: Bearer <key>" or the X-API-Key header.
func requestAPIKey(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.Header.Get("X-API-Key")
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
