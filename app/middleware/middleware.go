package appMiddleware

import (
	"net/http"
	"strings"
)

// RequireSecret guards endpoints that authenticate via header instead of a
// request body field. It accepts the secret either in the X-Agent-Secret
// header or as a bearer token in the Authorization header.
func RequireSecret(verifier *SecretVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(SecretHeader)
			if provided == "" {
				authHeader := r.Header.Get("Authorization")
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					provided = parts[1]
				}
			}

			if !verifier.Verify(provided) {
				http.Error(w, "Invalid authentication token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
