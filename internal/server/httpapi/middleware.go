package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/silvercar/backend/internal/server/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// requireToken guards a route behind a valid Bearer access token. The decoded
// claims are stored on the request context for the handler.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := s.codec.Decode(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		// reset tokens are scoped to redemption and must not act as access tokens
		if typ, _ := claims.StringClaim(auth.ClaimType); typ == auth.TokenTypePasswordReset {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the access-token claims stored by requireToken.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}
