package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/internal/notify"
	"github.com/mlediamant/salon-crm/internal/users"
)

type recordingEmail struct {
	sent []notify.EmailMessage
}

func (r *recordingEmail) Send(ctx context.Context, msg notify.EmailMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

type authEnv struct {
	handler *AuthHandler
	users   *users.Service
	email   *recordingEmail
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	svc := users.NewService(users.NewInMemoryRepository(), nil, 7*24*time.Hour, time.Hour)
	_, err := svc.Register(context.Background(), &users.RegisterRequest{
		Email:    "admin@salon.test",
		Password: "correct-horse",
		Name:     "Admin",
		Role:     users.RoleAdmin,
	})
	require.NoError(t, err)

	email := &recordingEmail{}
	notifier := notify.NewService(email, "M.Le Diamant", "https://crm.salon.test", nil)
	auditLog, _ := testAuditLogger()
	return &authEnv{
		handler: NewAuthHandler(svc, notifier, auditLog, false, nil),
		users:   svc,
		email:   email,
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newAuthEnv(t)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/login", loginRequest{
		Email:    "admin@salon.test",
		Password: "correct-horse",
	}, nil)
	env.handler.Login(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)
	assert.NotEmpty(t, sessionCookie.Value)

	user, err := env.users.ValidateSession(context.Background(), sessionCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin@salon.test", user.Email)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newAuthEnv(t)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/login", loginRequest{
		Email:    "admin@salon.test",
		Password: "wrong",
	}, nil)
	env.handler.Login(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newAuthEnv(t)
	_, session, err := env.users.Login(context.Background(), "admin@salon.test", "correct-horse")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/logout", nil, nil)
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session.Token})
	env.handler.Logout(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	_, err = env.users.ValidateSession(context.Background(), session.Token)
	assert.ErrorIs(t, err, users.ErrSessionNotFound)
}

func TestForgotPasswordSendsMailWithoutRevealingAccounts(t *testing.T) {
	env := newAuthEnv(t)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/forgot-password", forgotPasswordRequest{Email: "admin@salon.test"}, nil)
	env.handler.ForgotPassword(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.email.sent, 1)
	assert.Contains(t, env.email.sent[0].Body, "reset-password?token=")

	// Unknown addresses get the identical answer and no mail.
	rec = httptest.NewRecorder()
	r = authedRequest(t, http.MethodPost, "/admin/api/forgot-password", forgotPasswordRequest{Email: "nobody@salon.test"}, nil)
	env.handler.ForgotPassword(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.email.sent, 1)
}

func TestResetPasswordFlow(t *testing.T) {
	env := newAuthEnv(t)
	token, err := env.users.RequestPasswordReset(context.Background(), "admin@salon.test")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/reset-password", resetPasswordRequest{
		Token:    token.Token,
		Password: "brand-new-password",
	}, nil)
	env.handler.ResetPassword(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	_, _, err = env.users.Login(context.Background(), "admin@salon.test", "brand-new-password")
	require.NoError(t, err)

	// The token is single-use.
	rec = httptest.NewRecorder()
	r = authedRequest(t, http.MethodPost, "/admin/api/reset-password", resetPasswordRequest{
		Token:    token.Token,
		Password: "another-password",
	}, nil)
	env.handler.ResetPassword(rec, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRequiresAdminRole(t *testing.T) {
	env := newAuthEnv(t)

	employee := &users.User{ID: 7, Email: "staff@salon.test", Role: users.RoleEmployee, IsActive: true}
	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/users/create", users.RegisterRequest{
		Email:    "new@salon.test",
		Password: "long-enough",
	}, employee)
	env.handler.Register(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
