package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Keys is the set of accepted API keys.
type Keys []string

// readAuth accepts Basic credentials (key as username, empty password),
// a Bearer token or an X-API-Key header.
func readAuth(r *http.Request) string {
	if user, _, ok := r.BasicAuth(); ok {
		return strings.TrimSpace(user)
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return strings.TrimSpace(k)
	}
	return ""
}

// Has reports whether given is one of the keys. An empty set accepts anything.
func (k Keys) Has(given string) bool {
	if len(k) == 0 {
		return true
	}
	if given == "" {
		return false
	}
	for _, want := range k {
		if subtle.ConstantTimeCompare([]byte(want), []byte(given)) == 1 {
			return true
		}
	}
	return false
}

// RequireKey rejects requests without a known key.
// If no keys are configured, it allows all requests (handy for local dev).
func RequireKey(keys Keys) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keys.Has(readAuth(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="cronbeat"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
		})
	}
}
