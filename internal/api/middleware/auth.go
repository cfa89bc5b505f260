// Package middleware provides HTTP middleware for request logging,
// CORS, and authentication.
package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/fernet/fernet-go"

	"github.com/papertrade/paper-trading-backend/internal/api/response"
	"github.com/papertrade/paper-trading-backend/internal/config"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserIDFromContext returns the authenticated user ID stored by the Auth
// middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID returns a context carrying the authenticated user ID. Exported
// for tests that call handlers directly.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// NewAuth builds the authentication middleware. The authentication service
// mints a fernet token whose payload is the user's ID; this middleware
// verifies it with the shared key and a TTL, and places the identity in the
// request context. The core trusts that identity and never re-verifies it.
func NewAuth(cfg config.AuthConfig) func(http.Handler) http.Handler {
	keys, err := fernet.DecodeKeys(cfg.FernetKey)
	if err != nil {
		// Misconfiguration: without a key every token is unverifiable.
		// Reject all authenticated traffic rather than letting it through.
		log.Printf("auth: invalid fernet key, rejecting all authenticated requests: %v", err)
		keys = nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing auth token")
				return
			}

			if keys == nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Authentication unavailable")
				return
			}

			payload := fernet.VerifyAndDecrypt([]byte(token), cfg.TokenTTL, keys)
			if payload == nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid auth token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), string(payload))))
		})
	}
}
