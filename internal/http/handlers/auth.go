package handlers

import (
	"errors"
	"net/http"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/internal/notify"
	"github.com/mlediamant/salon-crm/internal/users"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// AuthHandler serves login, logout and the password reset flow.
type AuthHandler struct {
	users     *users.Service
	notifier  *notify.Service
	audit     *audit.Logger
	secure    bool
	logger    *logging.Logger
}

// NewAuthHandler creates the auth handler. secure marks session cookies
// Secure, which should be on everywhere except local setups.
func NewAuthHandler(usersSvc *users.Service, notifier *notify.Service, auditLog *audit.Logger, secure bool, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{
		users:    usersSvc,
		notifier: notifier,
		audit:    auditLog,
		secure:   secure,
		logger:   logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and sets the session cookie.
// POST /admin/api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, session, err := h.users.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		respondFailure(w, http.StatusUnauthorized, "Invalid email or password")
		return
	case errors.Is(err, users.ErrUserDisabled):
		respondFailure(w, http.StatusForbidden, "Account is disabled")
		return
	case err != nil:
		h.logger.Error("login failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.audit.Record(r.Context(), user.ID, user.Email, "login", "user", "", "Signed in")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged in",
		"user":    user,
	})
}

// Logout drops the session and clears the cookie.
// POST /admin/api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.users.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("logout failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondSuccess(w, "Logged out")
}

// Me returns the authenticated account.
// GET /admin/api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Register creates a new account. Only admins may call it.
// POST /admin/api/users/create
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok || actor.Role != users.RoleAdmin {
		jsonError(w, "forbidden", http.StatusForbidden)
		return
	}

	var req users.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.users.Register(r.Context(), &req)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		respondFailure(w, http.StatusConflict, "Email is already registered")
		return
	case errors.Is(err, users.ErrInvalidEmail), errors.Is(err, users.ErrWeakPassword), errors.Is(err, users.ErrInvalidRole):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("register failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	h.audit.Record(r.Context(), actor.ID, actor.Email, "create_user", "user", user.Email, "Created account "+user.Email)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Account created",
		"user":    user,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a reset token and mails the reset link. The
// response never reveals whether the address exists.
// POST /admin/api/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		respondFailure(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.users.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			h.logger.Error("password reset request failed", "error", err)
		}
		respondSuccess(w, "If the address is registered, a reset link has been sent")
		return
	}

	name := ""
	if u, uerr := h.users.GetByID(r.Context(), token.UserID); uerr == nil {
		name = u.Name
	}
	if err := h.notifier.SendPasswordReset(r.Context(), req.Email, name, token.Token); err != nil {
		h.logger.Error("password reset mail failed", "error", err)
	}
	respondSuccess(w, "If the address is registered, a reset link has been sent")
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword burns the token and sets the new password.
// POST /admin/api/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil || req.Token == "" {
		respondFailure(w, http.StatusBadRequest, "token and password are required")
		return
	}

	err := h.users.ResetPassword(r.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, users.ErrResetTokenInvalid):
		respondFailure(w, http.StatusBadRequest, "Reset link is invalid or expired")
		return
	case errors.Is(err, users.ErrWeakPassword):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("password reset failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not reset password")
		return
	}
	respondSuccess(w, "Password updated")
}
