package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerAuth guards the preference routes with a static token. An empty
// token disables the check, which is how a local server without
// server.token runs.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), prefix)
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="themeprefs"`)
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
