package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlediamant/salon-crm/internal/users"
)

type stubValidator struct {
	user *users.User
	err  error
}

func (s *stubValidator) ValidateSession(ctx context.Context, token string) (*users.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func okHandler(t *testing.T, wantUser bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantUser {
			_, ok := UserFromContext(r.Context())
			assert.True(t, ok, "user should be in context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuthValidCookie(t *testing.T) {
	mw := SessionAuth(&stubValidator{user: &users.User{ID: 1, Email: "admin@example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/admin/api/clients", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok"})
	rec := httptest.NewRecorder()

	mw(okHandler(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuthMissingCookie(t *testing.T) {
	mw := SessionAuth(&stubValidator{user: &users.User{ID: 1}})

	req := httptest.NewRequest(http.MethodGet, "/admin/api/clients", nil)
	rec := httptest.NewRecorder()

	mw(okHandler(t, false)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestSessionAuthExpiredSessionIsUnauthorized(t *testing.T) {
	mw := SessionAuth(&stubValidator{err: users.ErrSessionExpired})

	req := httptest.NewRequest(http.MethodGet, "/admin/api/clients", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	rec := httptest.NewRecorder()

	mw(okHandler(t, false)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionOrAdminJWTPrefersCookie(t *testing.T) {
	mw := SessionOrAdminJWT(&stubValidator{user: &users.User{ID: 7}}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok"})
	rec := httptest.NewRecorder()

	mw(okHandler(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionOrAdminJWTAcceptsBearer(t *testing.T) {
	secret := "secret"
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "api-client",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	mw := SessionOrAdminJWT(&stubValidator{err: users.ErrSessionNotFound}, secret)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	mw(okHandler(t, false)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionOrAdminJWTRejectsNeither(t *testing.T) {
	mw := SessionOrAdminJWT(&stubValidator{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	rec := httptest.NewRecorder()

	mw(okHandler(t, false)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
