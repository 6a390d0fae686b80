package httpx

import (
	"net/http"
	"strings"
)

// RequireRole the caller's role claim must be one of the listed roles.
// Runs after AuthnMiddleware; an authenticated caller with the wrong role
// gets 403, never 401.
func RequireRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if _, ok := want[role]; ok {
				next.ServeHTTP(w, r)
				return
			}

			writeRoleError(w, allowed...)
		})
	}
}

// RFC 6750-style error response for insufficient role.
func writeRoleError(w http.ResponseWriter, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_role", role="`+strings.Join(required, " ")+`"`)
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte("insufficient_role"))
}
