package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"scholarmind/application/store"
	"scholarmind/pkg/auth"
	"scholarmind/pkg/common"
)

// Authenticate validates the Bearer token and binds the request to the
// store's current identity. Tokens for any other identity are rejected:
// the stores hold exactly one identity's data at a time.
func Authenticate(tokens *auth.TokenService, sessions *store.SessionStore, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication token")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				logger.Warn("Rejected token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				switch err {
				case auth.ErrExpiredToken:
					common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token has expired")
				default:
					common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				}
				return
			}

			current := sessions.Identity()
			if current == nil || current.ID != claims.UserID {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token does not match the active identity")
				return
			}

			userCtx := &auth.UserContext{
				UserID:      claims.UserID,
				Email:       claims.Email,
				DisplayName: claims.DisplayName,
			}

			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), userCtx)))
		})
	}
}

// extractToken pulls the JWT from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return authHeader
}
