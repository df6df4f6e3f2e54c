package auth

import (
	"net/http"
	"strings"

	"github.com/strefethen/taskscheduler/internal/api"
	"github.com/strefethen/taskscheduler/internal/apperrors"
)

// RequireBearer guards a handler with an HS256 bearer-token check against
// secret. A blank secret disables the guard entirely — the monitor's
// mutate routes are open by default, matching the spec's core making no
// authentication claim.
func RequireBearer(secret string, next http.Handler) http.Handler {
	if secret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			api.WriteError(w, r, apperrors.NewUnauthorizedError("missing Authorization header"))
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			api.WriteError(w, r, apperrors.NewUnauthorizedError("invalid Authorization header format"))
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if err := Verify(secret, token); err != nil {
			if err == ErrTokenExpired {
				api.WriteError(w, r, apperrors.NewUnauthorizedError("token has expired", apperrors.ErrorCodeAuthTokenExpired))
				return
			}
			api.WriteError(w, r, apperrors.NewUnauthorizedError("invalid token", apperrors.ErrorCodeAuthTokenInvalid))
			return
		}
		next.ServeHTTP(w, r)
	})
}
