package middleware

import (
	"net/http"

	"github.com/projectdesk/projectdesk/internal/auth"
)

// RequireAuth rejects anonymous requests with 401. Must be applied
// after Authenticate. The message is the same whether the request
// carried no token, a bad token, or a revoked one.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.IdentityFromContext(r.Context()) == nil {
			writeAuthError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Authentication required","code":"UNAUTHORIZED"}`))
}
