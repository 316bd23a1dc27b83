package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mlediamant/salon-crm/internal/users"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "session_token"

const sessionUserKey contextKey = "sessionUser"

// SessionValidator resolves a session token to its user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*users.User, error)
}

// SessionAuth enforces a valid session cookie. Expired or unknown
// tokens are treated the same as a missing cookie.
func SessionAuth(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			user, err := sessions.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, users.ErrSessionNotFound) || errors.Is(err, users.ErrSessionExpired) {
					unauthorized(w)
					return
				}
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), sessionUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionOrAdminJWT accepts either a session cookie or a bearer admin
// JWT, so API clients can skip the cookie flow.
func SessionOrAdminJWT(sessions SessionValidator, adminSecret string) func(http.Handler) http.Handler {
	sessionMW := SessionAuth(sessions)
	adminMW := AdminJWT(adminSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				sessionMW(next).ServeHTTP(w, r)
				return
			}
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				adminMW(next).ServeHTTP(w, r)
				return
			}
			unauthorized(w)
		})
	}
}

// ContextWithUser attaches a session user to the context.
func ContextWithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, sessionUserKey, user)
}

// UserFromContext returns the session user if present.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(sessionUserKey).(*users.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
