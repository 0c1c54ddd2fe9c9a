package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/auth"
)

type ctxKey string

const CtxUserID ctxKey = "user_id"

// SessionAuth requires a valid bearer session token and puts the user id
// into the request context.
func SessionAuth(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Invalid Authorization header", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.VerifySession(parts[1])
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id stored by SessionAuth.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(CtxUserID).(string)
	return id
}
